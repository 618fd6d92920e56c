package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codewith-ram/task-manager/domain"
)

func TestHubFansOutViewEvents(t *testing.T) {
	hub := NewHub()
	first := hub.subscribe()
	second := hub.subscribe()
	defer hub.unsubscribe(first)
	defer hub.unsubscribe(second)

	hub.SetColumnCount(domain.StatusDone, 2)

	for _, ch := range []chan ViewEvent{first, second} {
		select {
		case ev := <-ch:
			if ev.Type != "count" || ev.Status != domain.StatusDone || ev.Count == nil || *ev.Count != 2 {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			t.Fatalf("expected event for every subscriber")
		}
	}
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	hub := NewHub()
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.HideModal()
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected buffer to cap at %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch := hub.subscribe()
	if hub.Subscribers() != 1 {
		t.Fatalf("expected one subscriber")
	}
	hub.unsubscribe(ch)
	if hub.Subscribers() != 0 {
		t.Fatalf("expected no subscribers")
	}
	hub.ShowModal(domain.StatusTodo)
	if len(ch) != 0 {
		t.Fatalf("unsubscribed channel received an event")
	}
}

func TestHubRenderColumnNeverSendsNilTasks(t *testing.T) {
	hub := NewHub()
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	hub.RenderColumn(domain.StatusBacklog, nil)
	ev := <-ch
	if ev.Tasks == nil {
		t.Fatalf("expected empty slice for an empty column")
	}
}

func TestStreamSendsSnapshotAndViewEvents(t *testing.T) {
	s := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := newFlushRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.e.ServeHTTP(rec, req)
	}()

	waitFor(t, time.Second, func() bool {
		return s.hub.Subscribers() == 1 && strings.Contains(rec.String(), "event: board\n")
	})

	if _, err := s.ctrl.SubmitTask(context.Background(), domain.TaskInput{Title: "streamed"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.ctrl.OpenDetail("t1")

	waitFor(t, time.Second, func() bool {
		return containsAll(rec.String(),
			"event: modal\n",
			"event: column\n",
			"event: count\n",
			"event: detail\n",
			`"title":"streamed"`,
		)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop after the client went away")
	}
	if s.hub.Subscribers() != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
	if got := rec.header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
}
