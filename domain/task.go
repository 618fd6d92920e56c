package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultAssignee is stored when a task is created without an assignee.
const DefaultAssignee = "Unassigned"

// Task represents a single card on the board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Assignee    string    `json:"assignee"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Initial returns the upper-cased first letter of the assignee, or "?" when
// the task has none.
func (t Task) Initial() string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(t.Assignee))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// TaskInput carries the fields submitted from the create form. Zero values
// select the defaults.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Assignee    string   `json:"assignee"`
	Status      Status   `json:"status"`
}

// Normalize trims the free text fields and fills in defaults. It returns
// ErrEmptyTitle when nothing is left of the title, or ErrInvalidStatus /
// ErrInvalidPriority for out of range enum values.
func (in TaskInput) Normalize() (TaskInput, error) {
	out := TaskInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
		Assignee:    strings.TrimSpace(in.Assignee),
		Status:      in.Status,
	}
	if out.Title == "" {
		return TaskInput{}, ErrEmptyTitle
	}
	if out.Priority == 0 {
		out.Priority = PriorityMedium
	}
	if !out.Priority.Valid() {
		return TaskInput{}, ErrInvalidPriority
	}
	if out.Status == 0 {
		out.Status = StatusTodo
	}
	if !out.Status.Valid() {
		return TaskInput{}, ErrInvalidStatus
	}
	if out.Assignee == "" {
		out.Assignee = DefaultAssignee
	}
	return out, nil
}
