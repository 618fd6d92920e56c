package board

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/codewith-ram/task-manager/domain"
)

// DeleteConfirmation is the question asked before a task is deleted.
const DeleteConfirmation = "Are you sure you want to delete this task?"

// ErrNoActiveDrag is returned by DragDrop when no drag gesture is running.
var ErrNoActiveDrag = errors.New("no active drag")

// View renders board state. Implementations decide how things look.
type View interface {
	RenderColumn(status domain.Status, tasks []domain.Task)
	SetColumnCount(status domain.Status, n int)
	ShowModal(prefill domain.Status)
	HideModal()
	ShowTaskDetail(task domain.Task)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	ConfirmDestructive(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) ConfirmDestructive(ctx context.Context, message string) bool {
	return f(ctx, message)
}

// Controller turns input events into store operations and re-renders the
// board after every change.
type Controller struct {
	mu      sync.Mutex
	store   *Store
	view    View
	confirm Confirmer
	rec     Reconciler
	drag    *DragSession
	now     func() time.Time
	logger  *log.Logger
}

func NewController(store *Store, view View, confirm Confirmer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{
		store:   store,
		view:    view,
		confirm: confirm,
		now:     time.Now,
		logger:  logger,
	}
}

// Board returns the current view model of every column.
func (c *Controller) Board() []Column {
	return c.rec.Columns(c.store.All())
}

// Render pushes every column and its count to the view.
func (c *Controller) Render() {
	for _, col := range c.Board() {
		c.view.RenderColumn(col.Status, col.Tasks)
		c.view.SetColumnCount(col.Status, col.Count)
	}
}

// OpenCreate shows the create form with status preselected; an invalid
// status falls back to todo.
func (c *Controller) OpenCreate(status domain.Status) {
	if !status.Valid() {
		status = domain.StatusTodo
	}
	c.view.ShowModal(status)
}

func (c *Controller) CloseCreate() {
	c.view.HideModal()
}

// Task looks up a task without touching the view.
func (c *Controller) Task(id string) (domain.Task, bool) {
	return c.store.GetByID(id)
}

// OpenDetail shows the detail view of a task.
func (c *Controller) OpenDetail(id string) (domain.Task, bool) {
	task, ok := c.store.GetByID(id)
	if !ok {
		return domain.Task{}, false
	}
	c.view.ShowTaskDetail(task)
	return task, true
}

// SubmitTask creates a task from the form fields. Rejected input leaves the
// board and the form untouched.
func (c *Controller) SubmitTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, err := c.store.CreateTask(ctx, in)
	if task.ID == "" {
		c.logger.WithError(err).Debug("task submission rejected")
		return domain.Task{}, err
	}
	c.view.HideModal()
	c.Render()
	return task, err
}

// RequestDelete deletes a task after the user confirms. It reports whether a
// task was removed.
func (c *Controller) RequestDelete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.GetByID(id); !ok {
		return false, nil
	}
	if c.confirm == nil || !c.confirm.ConfirmDestructive(ctx, DeleteConfirmation) {
		c.logger.WithField("task", id).Debug("delete declined")
		return false, nil
	}
	removed, err := c.store.DeleteTask(ctx, id)
	if removed {
		if c.drag != nil && c.drag.TaskID == id {
			c.drag = nil
		}
		c.Render()
	}
	return removed, err
}

// DragBegin starts a drag gesture for id, replacing any stale one.
func (c *Controller) DragBegin(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.GetByID(id); !ok {
		c.drag = nil
		return false
	}
	c.drag = NewDragSession(id, c.now())
	return true
}

// DragHover returns the insertion index for the current pointer position.
func (c *Controller) DragHover(target domain.Status, pointerY float64, cards []CardBox) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil || !target.Valid() {
		return 0, false
	}
	return c.drag.Hover(c.rec, target, pointerY, cards), true
}

// DragDrop commits the running gesture to target and ends it.
func (c *Controller) DragDrop(ctx context.Context, target domain.Status, pointerY float64, cards []CardBox) (DropPlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := c.drag
	c.drag = nil
	if session == nil {
		return DropPlan{}, ErrNoActiveDrag
	}
	plan, ok := c.rec.Plan(c.store.All(), session.TaskID, target, cards, pointerY)
	if !ok {
		c.logger.WithFields(log.Fields{"task": session.TaskID, "status": target}).Debug("drop ignored")
		if !target.Valid() {
			return DropPlan{}, domain.ErrInvalidStatus
		}
		return DropPlan{}, domain.ErrTaskNotFound
	}
	err := c.store.MoveTaskTo(ctx, plan.TaskID, plan.To, plan.Index)
	if err != nil && !errors.Is(err, ErrPersist) {
		return DropPlan{}, err
	}
	c.Render()
	return plan, err
}

// DragCancel ends the running gesture without changing anything.
func (c *Controller) DragCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = nil
}

// Dragging returns the id of the task being dragged, if any.
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", false
	}
	return c.drag.TaskID, true
}
