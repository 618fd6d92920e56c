package board

import "github.com/codewith-ram/task-manager/domain"

// CardBox is the rendered vertical extent of one card, relative to the top
// of its column.
type CardBox struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

func (b CardBox) midpoint() float64 { return b.Top + b.Height/2 }

// Column is the view model of one board column.
type Column struct {
	Status domain.Status `json:"status"`
	Title  string        `json:"title"`
	Tasks  []domain.Task `json:"tasks"`
	Count  int           `json:"count"`
}

// DropPlan describes the effect of dropping a dragged card on a column.
type DropPlan struct {
	TaskID  string        `json:"taskId"`
	From    domain.Status `json:"from"`
	To      domain.Status `json:"to"`
	Index   int           `json:"index"`
	Changed bool          `json:"changed"`
}

// Reconciler derives per-column views from the task collection. It holds no
// state and never mutates what it is given.
type Reconciler struct{}

// Columns returns every board column in display order.
func (r Reconciler) Columns(tasks []domain.Task) []Column {
	cols := make([]Column, 0, len(domain.Statuses()))
	for _, st := range domain.Statuses() {
		cols = append(cols, r.Column(tasks, st))
	}
	return cols
}

func (Reconciler) Column(tasks []domain.Task, status domain.Status) Column {
	col := Column{Status: status, Title: status.Title(), Tasks: []domain.Task{}}
	for _, t := range tasks {
		if t.Status == status {
			col.Tasks = append(col.Tasks, t)
		}
	}
	col.Count = len(col.Tasks)
	return col
}

// InsertionIndex returns where a card dropped at pointerY lands among cards,
// ignoring the dragged card itself. A card whose midpoint lies below the
// pointer receives the drop in front of it.
func (Reconciler) InsertionIndex(cards []CardBox, draggedID string, pointerY float64) int {
	i := 0
	for _, c := range cards {
		if c.ID == draggedID {
			continue
		}
		if pointerY < c.midpoint() {
			return i
		}
		i++
	}
	return i
}

// Plan computes the drop of draggedID on target. It returns false when the
// task is unknown or target is not a board column.
func (r Reconciler) Plan(tasks []domain.Task, draggedID string, target domain.Status, cards []CardBox, pointerY float64) (DropPlan, bool) {
	if !target.Valid() {
		return DropPlan{}, false
	}
	for _, t := range tasks {
		if t.ID != draggedID {
			continue
		}
		return DropPlan{
			TaskID:  draggedID,
			From:    t.Status,
			To:      target,
			Index:   r.InsertionIndex(cards, draggedID, pointerY),
			Changed: t.Status != target,
		}, true
	}
	return DropPlan{}, false
}
