package storage

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSlot(t *testing.T) {
	mr, client := newMiniredis(t)
	slot := NewRedisSlot(client, "kanban:")
	ctx := context.Background()

	if _, err := slot.Get(ctx, "board"); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty, got %v", err)
	}
	if err := slot.Put(ctx, "board", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw, err := mr.Get("kanban:board")
	if err != nil || raw != "payload" {
		t.Fatalf("unexpected raw value %q: %v", raw, err)
	}
	if ttl := mr.TTL("kanban:board"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
	got, err := slot.Get(ctx, "board")
	if err != nil || string(got) != "payload" {
		t.Fatalf("get = %q, %v", got, err)
	}
}

func TestRedisSlotBackendError(t *testing.T) {
	mr, client := newMiniredis(t)
	slot := NewRedisSlot(client, "")
	mr.SetError("LOADING")

	if _, err := slot.Get(context.Background(), "board"); err == nil || errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if got := NewAdapter(slot, "board", nil).Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty load on backend error, got %+v", got)
	}
}
