package domain

import "errors"

var (
	// ErrEmptyTitle is returned when a task title is blank after trimming.
	ErrEmptyTitle = errors.New("task title is empty")
	// ErrInvalidStatus is returned for a status outside the board columns.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPriority is returned for a priority outside the known levels.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")
)
