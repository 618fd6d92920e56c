package api

import (
	"sync"

	"github.com/codewith-ram/task-manager/domain"
)

const subscriberBuffer = 32

// ViewEvent is one rendering instruction pushed to connected browsers.
type ViewEvent struct {
	Type   string        `json:"type"`
	Status domain.Status `json:"status,omitempty"`
	Tasks  []domain.Task `json:"tasks,omitempty"`
	Count  *int          `json:"count,omitempty"`
	Open   *bool         `json:"open,omitempty"`
	Task   *domain.Task  `json:"task,omitempty"`
}

// Hub implements board.View by fanning view events out to stream
// subscribers. Events for a subscriber whose buffer is full are dropped; the
// next board snapshot brings it back in line.
type Hub struct {
	mu   sync.Mutex
	subs map[chan ViewEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan ViewEvent]struct{})}
}

func (h *Hub) subscribe() chan ViewEvent {
	ch := make(chan ViewEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan ViewEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Subscribers returns the number of connected streams.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) publish(ev ViewEvent) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *Hub) RenderColumn(status domain.Status, tasks []domain.Task) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.publish(ViewEvent{Type: "column", Status: status, Tasks: tasks})
}

func (h *Hub) SetColumnCount(status domain.Status, n int) {
	h.publish(ViewEvent{Type: "count", Status: status, Count: &n})
}

func (h *Hub) ShowModal(prefill domain.Status) {
	open := true
	h.publish(ViewEvent{Type: "modal", Status: prefill, Open: &open})
}

func (h *Hub) HideModal() {
	open := false
	h.publish(ViewEvent{Type: "modal", Open: &open})
}

func (h *Hub) ShowTaskDetail(task domain.Task) {
	h.publish(ViewEvent{Type: "detail", Task: &task})
}
