package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/codewith-ram/task-manager/domain"
)

// DefaultKey is the slot key the board is stored under.
const DefaultKey = "jira-tasks"

// ErrSlotEmpty is returned by Slot.Get when nothing was ever written to key.
var ErrSlotEmpty = errors.New("slot empty")

// Slot is a durable key-value entry holding one serialized value per key.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Adapter loads and saves the full task list under a single slot key.
type Adapter struct {
	slot   Slot
	key    string
	logger *log.Logger
}

// NewAdapter creates an Adapter over slot. An empty key selects DefaultKey.
func NewAdapter(slot Slot, key string, logger *log.Logger) *Adapter {
	if slot == nil {
		panic("storage.NewAdapter: slot is nil")
	}
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Adapter{slot: slot, key: key, logger: logger}
}

// Load returns the stored tasks. A missing slot, a backend error or content
// that is not a valid task list all yield an empty list.
func (a *Adapter) Load(ctx context.Context) []domain.Task {
	data, err := a.slot.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			a.logger.WithError(err).WithField("key", a.key).Warn("failed to read task slot")
		}
		return []domain.Task{}
	}
	tasks, err := decodeTasks(data)
	if err != nil {
		a.logger.WithError(err).WithField("key", a.key).Warn("discarding unreadable task slot")
		return []domain.Task{}
	}
	return tasks
}

// Save writes the whole collection to the slot in one put.
func (a *Adapter) Save(ctx context.Context, tasks []domain.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	return a.slot.Put(ctx, a.key, data)
}

func encodeTasks(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return sonic.ConfigStd.Marshal(tasks)
}

func decodeTasks(data []byte) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %d has no id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrInvalidStatus)
		}
		if !t.Priority.Valid() {
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.ErrInvalidPriority)
		}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}
