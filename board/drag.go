package board

import (
	"time"

	"github.com/codewith-ram/task-manager/domain"
)

// DragSession tracks one drag gesture from begin to drop or cancel. It is
// never persisted.
type DragSession struct {
	TaskID    string
	StartedAt time.Time
	Over      domain.Status
	Index     int
}

// NewDragSession starts a gesture for taskID.
func NewDragSession(taskID string, now time.Time) *DragSession {
	return &DragSession{TaskID: taskID, StartedAt: now, Index: -1}
}

// Hover records the column under the pointer and returns the insertion index
// for visual feedback. It does not touch the task collection.
func (d *DragSession) Hover(r Reconciler, target domain.Status, pointerY float64, cards []CardBox) int {
	d.Over = target
	d.Index = r.InsertionIndex(cards, d.TaskID, pointerY)
	return d.Index
}
