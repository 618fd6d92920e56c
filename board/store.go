package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/codewith-ram/task-manager/domain"
)

// ErrPersist wraps failures to save the collection. The in-memory change
// that triggered the save is kept.
var ErrPersist = errors.New("persist tasks")

// Persister loads and saves the whole task collection.
type Persister interface {
	// Load never fails; unreadable state comes back empty.
	Load(ctx context.Context) []domain.Task
	Save(ctx context.Context, tasks []domain.Task) error
}

// Store owns the ordered task collection and is the only writer of persisted
// state. Slice order is the display order inside every column.
type Store struct {
	mu      sync.Mutex
	tasks   []domain.Task
	persist Persister
	now     func() time.Time
	newID   func() string
	last    time.Time
	logger  *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how task ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore loads the persisted collection and returns a store writing back
// through persist.
func NewStore(ctx context.Context, persist Persister, opts ...Option) *Store {
	s := &Store{
		persist: persist,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = persist.Load(ctx)
	for _, t := range s.tasks {
		if t.UpdatedAt.After(s.last) {
			s.last = t.UpdatedAt
		}
	}
	s.logger.WithField("tasks", len(s.tasks)).Debug("task store loaded")
	return s
}

// CreateTask validates in, assigns an id and timestamps, appends the task and
// saves. Nothing is created when validation fails.
func (s *Store) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	in, err := in.Normalize()
	if err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.stamp()
	task := domain.Task{
		ID:          s.uniqueID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Assignee:    in.Assignee,
		Status:      in.Status,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.tasks = append(s.tasks, task)
	s.logger.WithFields(log.Fields{"task": task.ID, "status": task.Status}).Debug("task created")
	return task, s.save(ctx)
}

// DeleteTask removes the task with the given id. It reports false, and does
// not save, when no such task exists.
func (s *Store) DeleteTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.logger.WithField("task", id).Debug("task deleted")
	return true, s.save(ctx)
}

// MoveTask changes the column of a task, placing it last in the new column.
// Moving a task to the column it is already in changes nothing.
func (s *Store) MoveTask(ctx context.Context, id string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id, status)
	if err != nil {
		return err
	}
	if s.tasks[i].Status == status {
		return nil
	}
	return s.place(ctx, i, status, -1)
}

// MoveTaskTo moves a task to status at position index among the other cards
// of that column. Index is clamped to the column bounds. A drop inside the
// same column only reorders and leaves UpdatedAt alone.
func (s *Store) MoveTaskTo(ctx context.Context, id string, status domain.Status, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id, status)
	if err != nil {
		return err
	}
	if index < 0 {
		index = 0
	}
	return s.place(ctx, i, status, index)
}

// GetByID returns the task with the given id.
func (s *Store) GetByID(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	return s.tasks[i], true
}

// ListByStatus returns the tasks of one column in store order.
func (s *Store) ListByStatus(status domain.Status) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) CountByStatus(status domain.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// All returns a copy of the whole collection in store order.
func (s *Store) All() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) lookup(id string, status domain.Status) (int, error) {
	i := s.indexOf(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	if !status.Valid() {
		return -1, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}
	return i, nil
}

// place moves tasks[i] into status at column position index; a negative
// index appends to the column.
func (s *Store) place(ctx context.Context, i int, status domain.Status, index int) error {
	task := s.tasks[i]
	rest := make([]domain.Task, 0, len(s.tasks))
	rest = append(rest, s.tasks[:i]...)
	rest = append(rest, s.tasks[i+1:]...)

	var column []int
	for j, t := range rest {
		if t.Status == status {
			column = append(column, j)
		}
	}
	at := len(rest)
	switch {
	case len(column) == 0:
	case index >= 0 && index < len(column):
		at = column[index]
	default:
		at = column[len(column)-1] + 1
	}

	changed := task.Status != status
	if !changed {
		cur := 0
		for _, j := range column {
			if j < i {
				cur++
			}
		}
		target := index
		if target < 0 || target > len(column) {
			target = len(column)
		}
		if cur == target {
			return nil
		}
	}
	if changed {
		task.Status = status
		task.UpdatedAt = s.refresh(task.UpdatedAt)
	}

	out := make([]domain.Task, 0, len(s.tasks))
	out = append(out, rest[:at]...)
	out = append(out, task)
	out = append(out, rest[at:]...)
	s.tasks = out

	s.logger.WithFields(log.Fields{"task": task.ID, "status": status, "position": at}).Debug("task moved")
	return s.save(ctx)
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueID() string {
	base := s.newID()
	id := base
	for n := 1; s.indexOf(id) >= 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

// stamp returns the current time, never earlier than a previous stamp.
func (s *Store) stamp() time.Time {
	ts := s.now().UTC()
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts
	return ts
}

func (s *Store) refresh(prev time.Time) time.Time {
	ts := s.stamp()
	if ts.Before(prev) {
		return prev
	}
	return ts
}

func (s *Store) save(ctx context.Context) error {
	snapshot := make([]domain.Task, len(s.tasks))
	copy(snapshot, s.tasks)
	if err := s.persist.Save(ctx, snapshot); err != nil {
		s.logger.WithError(err).WithField("tasks", len(snapshot)).Error("failed to persist tasks")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
