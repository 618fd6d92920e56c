package api

import (
	"context"

	"github.com/codewith-ram/task-manager/board"
	"github.com/codewith-ram/task-manager/domain"
)

// Board is the interaction surface the HTTP handlers drive.
type Board interface {
	Board() []board.Column
	Task(id string) (domain.Task, bool)
	OpenDetail(id string) (domain.Task, bool)
	OpenCreate(status domain.Status)
	CloseCreate()
	SubmitTask(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	RequestDelete(ctx context.Context, id string) (bool, error)
	DragBegin(id string) bool
	DragHover(target domain.Status, pointerY float64, cards []board.CardBox) (int, bool)
	DragDrop(ctx context.Context, target domain.Status, pointerY float64, cards []board.CardBox) (board.DropPlan, error)
	DragCancel()
}

// Deduper prevents processing of duplicate submissions.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove deletes a previously added key, used when the submission fails.
	Remove(ctx context.Context, scope, key string) error
}

type boardResponse struct {
	Columns []board.Column `json:"columns"`
}

type dragBeginRequest struct {
	TaskID string `json:"taskId"`
}

type dragRequest struct {
	Column   domain.Status   `json:"column"`
	PointerY float64         `json:"pointerY"`
	Cards    []board.CardBox `json:"cards"`
}

type hoverResponse struct {
	Index int `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type duplicateResponse struct {
	Duplicate      bool   `json:"duplicate"`
	IdempotencyKey string `json:"idempotencyKey"`
}
