package domain

import "strings"

// Domain entities for the board.
// No dependency on Gin, Postgres or Redis.

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Columns lists the board columns in display order.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// ParseColumn normalizes user or stored input into a Column.
// "inProgress" and "in_progress" are accepted as aliases of in-progress.
func ParseColumn(s string) (Column, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return ColumnTodo, true
	case "in-progress", "inprogress", "in_progress":
		return ColumnInProgress, true
	case "done":
		return ColumnDone, true
	}
	return "", false
}

// ParsePriority normalizes input into a Priority.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

type Subtask struct {
	ID        string
	Title     string
	Completed bool
}

type Task struct {
	ID          string
	Title       string
	Priority    Priority
	Column      Column
	Subtasks    []Subtask
	Suggestions []string
}

// Clone returns a deep copy so callers never share slices with the store.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(out.Subtasks, t.Subtasks)
	}
	if t.Suggestions != nil {
		out.Suggestions = make([]string, len(t.Suggestions))
		copy(out.Suggestions, t.Suggestions)
	}
	return out
}

// Progress returns the rounded percentage of completed subtasks, 0 when there are none.
func (t Task) Progress() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return (done*200 + len(t.Subtasks)) / (2 * len(t.Subtasks))
}

// FindSubtask returns the index of the subtask with id, or -1.
func (t Task) FindSubtask(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneTasks deep-copies a task list.
func CloneTasks(list []Task) []Task {
	out := make([]Task, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
