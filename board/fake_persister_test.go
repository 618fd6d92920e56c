package board

import (
	"context"
	"time"

	"github.com/codewith-ram/task-manager/domain"
)

type fakePersister struct {
	loaded  []domain.Task
	saved   [][]domain.Task
	saveErr error
}

func (f *fakePersister) Load(ctx context.Context) []domain.Task {
	out := make([]domain.Task, len(f.loaded))
	copy(out, f.loaded)
	return out
}

func (f *fakePersister) Save(ctx context.Context, tasks []domain.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, tasks)
	return nil
}

func (f *fakePersister) last() []domain.Task {
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

// stepClock advances by one second on every call.
type stepClock struct{ t time.Time }

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "task-" + string(rune('a'+n-1))
	}
}

func newTestStore(fp *fakePersister) *Store {
	return NewStore(context.Background(), fp, WithClock(newStepClock().Now), WithIDGenerator(seqIDs()))
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
