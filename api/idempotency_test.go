package api

import (
	"context"
	"testing"
	"time"
)

func TestRedisDeduperAddAndRemove(t *testing.T) {
	client := newMiniredis(t)
	deduper := NewRedisDeduper(client, time.Minute)
	ctx := context.Background()

	added, err := deduper.Add(ctx, "task", "k1")
	if err != nil || !added {
		t.Fatalf("expected first add to succeed: added=%v err=%v", added, err)
	}
	added, err = deduper.Add(ctx, "task", "k1")
	if err != nil || added {
		t.Fatalf("expected duplicate: added=%v err=%v", added, err)
	}
	if err := deduper.Remove(ctx, "task", "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	added, err = deduper.Add(ctx, "task", "k1")
	if err != nil || !added {
		t.Fatalf("expected key to be reusable after remove: added=%v err=%v", added, err)
	}
}

func TestRedisDeduperKeyNamespacing(t *testing.T) {
	client := newMiniredis(t)
	deduper := NewRedisDeduper(client, time.Minute)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, "task", "same"); err != nil {
		t.Fatalf("add: %v", err)
	}
	added, err := deduper.Add(ctx, "other", "same")
	if err != nil || !added {
		t.Fatalf("expected scopes to be independent: added=%v err=%v", added, err)
	}
	ttl, err := client.TTL(ctx, "idem:task:same").Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}
}

func TestRequestConfirmer(t *testing.T) {
	var c RequestConfirmer
	if c.ConfirmDestructive(context.Background(), "sure?") {
		t.Fatalf("expected no confirmation without a flag")
	}
	if !c.ConfirmDestructive(WithConfirmation(context.Background(), true), "sure?") {
		t.Fatalf("expected confirmation from context")
	}
	if c.ConfirmDestructive(WithConfirmation(context.Background(), false), "sure?") {
		t.Fatalf("expected declined confirmation")
	}
}
