package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
	"github.com/Weskio/ai-task-whisperer/internal/notify"
	"github.com/Weskio/ai-task-whisperer/internal/repo"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidColumn   = errors.New("invalid column")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidSubtask  = errors.New("invalid subtask")
)

const (
	msgCreated      = "Task created successfully"
	msgCreateFailed = "Failed to create task"
	msgUpdated      = "Task updated successfully"
	msgSubtaskAdded = "Subtask added"
	msgRegenFailed  = "Failed to regenerate suggestions"
)

var moveMessages = map[dom.Column]string{
	dom.ColumnTodo:       "Task moved to To Do",
	dom.ColumnInProgress: "Task moved to In Progress",
	dom.ColumnDone:       "Task marked as Done",
}

// Suggester produces suggestion lists. Implementations never fail.
type Suggester interface {
	Suggest(ctx context.Context, title string) []string
	Refresh(ctx context.Context, title string) []string
}

// ChangeListener is called with a copy of the list after every committed change.
type ChangeListener func(ctx context.Context, list []dom.Task)

// TaskPatch holds the fields UpdateFields may change. Nil fields are left alone.
type TaskPatch struct {
	Title       *string
	Priority    *dom.Priority
	Column      *dom.Column
	Subtasks    *[]dom.Subtask
	Suggestions *[]string
}

// errUnchanged tells mutate that the operation found nothing to change.
var errUnchanged = errors.New("unchanged")

// BoardService owns the task list. Every mutation runs against the latest
// stored list inside one atomic store update, so a second process sharing
// the store (the CLI next to the server) never has its writes overwritten.
// Committed changes are then handed to the change listeners.
type BoardService struct {
	mu        sync.Mutex
	tasks     []dom.Task
	dirty     bool // last save failed; memory is ahead of the store
	listeners []ChangeListener

	repo      repo.TaskRepo
	suggester Suggester
	notifier  notify.Notifier
	pending   atomic.Int32
	newID     func() (string, error)
}

// NewBoardService loads the saved list from r. A missing or unreadable
// snapshot is logged and the board starts empty.
func NewBoardService(ctx context.Context, r repo.TaskRepo, s Suggester, n notify.Notifier) *BoardService {
	if n == nil {
		n = notify.Discard{}
	}
	b := &BoardService{
		repo:      r,
		suggester: s,
		notifier:  n,
		newID:     newUUID,
	}
	list, err := r.Load(ctx)
	if err != nil {
		log.Printf("board: load tasks: %v (starting empty)", err)
		list = nil
	}
	b.tasks = list
	return b
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Subscribe registers fn to run after every committed change.
func (b *BoardService) Subscribe(fn ChangeListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// commit must be called with b.mu held.
func (b *BoardService) commit(ctx context.Context, next []dom.Task) {
	b.tasks = next
	for _, fn := range b.listeners {
		fn(ctx, dom.CloneTasks(next))
	}
}

// mutate applies op to a copy of the stored list and saves the result in
// one store update. op returns errUnchanged to skip the write and the commit.
// If the stored list does not decode, or the previous save failed, op runs on
// the in-memory list. A failed save is logged and the result is still
// committed in memory. Must be called with b.mu held.
func (b *BoardService) mutate(ctx context.Context, op func(list []dom.Task) ([]dom.Task, error)) error {
	var (
		next  []dom.Task
		opErr error
		ran   bool
	)
	err := b.repo.Update(context.WithoutCancel(ctx), func(stored []dom.Task, decodeErr error) ([]dom.Task, error) {
		ran = true
		base := stored
		if decodeErr != nil || b.dirty {
			if decodeErr != nil {
				log.Printf("board: stored tasks unreadable, replacing them: %v", decodeErr)
			}
			base = b.tasks
		}
		next, opErr = op(dom.CloneTasks(base))
		return next, opErr
	})
	if !ran {
		next, opErr = op(dom.CloneTasks(b.tasks))
	}
	if errors.Is(opErr, errUnchanged) {
		b.tasks = next
		return nil
	}
	if opErr != nil {
		return opErr
	}
	if err != nil {
		log.Printf("board: save tasks: %v", err)
	}
	b.dirty = err != nil
	b.commit(ctx, next)
	return nil
}

// refresh picks up changes saved by other processes. Read failures keep the
// in-memory list. Must be called with b.mu held.
func (b *BoardService) refresh(ctx context.Context) {
	if b.dirty {
		return
	}
	list, err := b.repo.Load(ctx)
	if err != nil {
		return
	}
	b.tasks = list
}

func indexOf(list []dom.Task, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Tasks returns a copy of the current list in insertion order.
func (b *BoardService) Tasks() []dom.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh(context.Background())
	return dom.CloneTasks(b.tasks)
}

func (b *BoardService) Task(id string) (dom.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh(context.Background())
	i := indexOf(b.tasks, id)
	if i < 0 {
		return dom.Task{}, ErrNotFound
	}
	return b.tasks[i].Clone(), nil
}

// Pending is the number of suggestion fetches in flight.
func (b *BoardService) Pending() int {
	return int(b.pending.Load())
}

func (b *BoardService) fetch(ctx context.Context, title string, refresh bool) []string {
	b.pending.Add(1)
	defer b.pending.Add(-1)
	if refresh {
		return b.suggester.Refresh(ctx, title)
	}
	return b.suggester.Suggest(ctx, title)
}

// Create fetches suggestions for title and then appends the new task in one step.
func (b *BoardService) Create(ctx context.Context, title string, priority dom.Priority) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrEmptyTitle
	}
	if !priority.Valid() {
		return dom.Task{}, ErrInvalidPriority
	}
	id, err := b.newID()
	if err != nil {
		b.notifier.Notify(notify.LevelError, msgCreateFailed)
		return dom.Task{}, fmt.Errorf("generate id: %w", err)
	}

	suggestions := b.fetch(ctx, title, false)

	t := dom.Task{
		ID:          id,
		Title:       title,
		Priority:    priority,
		Column:      dom.ColumnTodo,
		Subtasks:    []dom.Subtask{},
		Suggestions: append([]string{}, suggestions...),
	}

	b.mu.Lock()
	err = b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		return append(list, t), nil
	})
	b.mu.Unlock()
	if err != nil {
		b.notifier.Notify(notify.LevelError, msgCreateFailed)
		return dom.Task{}, err
	}

	b.notifier.Notify(notify.LevelSuccess, msgCreated)
	return t.Clone(), nil
}

// Move sets the task's column. Moving to the current column changes nothing.
func (b *BoardService) Move(ctx context.Context, id string, col dom.Column) (dom.Task, error) {
	if !col.Valid() {
		return dom.Task{}, ErrInvalidColumn
	}
	var t dom.Task
	b.mu.Lock()
	err := b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		unchanged := list[i].Column == col
		list[i].Column = col
		t = list[i].Clone()
		if unchanged {
			return list, errUnchanged
		}
		return list, nil
	})
	b.mu.Unlock()
	if err != nil {
		return dom.Task{}, err
	}

	b.notifier.Notify(notify.LevelInfo, moveMessages[col])
	return t, nil
}

// Delete removes the task. Deleting an unknown id is a no-op.
func (b *BoardService) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, id)
		if i < 0 {
			return list, errUnchanged
		}
		return append(list[:i], list[i+1:]...), nil
	})
}

// UpdateFields merges the non-nil fields of p into the task.
func (b *BoardService) UpdateFields(ctx context.Context, id string, p TaskPatch) (dom.Task, error) {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			return dom.Task{}, ErrEmptyTitle
		}
		p.Title = &trimmed
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return dom.Task{}, ErrInvalidPriority
	}
	if p.Column != nil && !p.Column.Valid() {
		return dom.Task{}, ErrInvalidColumn
	}
	if p.Subtasks != nil {
		if err := validateSubtasks(*p.Subtasks); err != nil {
			return dom.Task{}, err
		}
	}

	var (
		out          dom.Task
		titleChanged bool
	)
	b.mu.Lock()
	err := b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		t := &list[i]
		titleChanged = false
		if p.Title != nil {
			titleChanged = t.Title != *p.Title
			t.Title = *p.Title
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.Column != nil {
			t.Column = *p.Column
		}
		if p.Subtasks != nil {
			t.Subtasks = append([]dom.Subtask{}, (*p.Subtasks)...)
		}
		if p.Suggestions != nil {
			t.Suggestions = append([]string{}, (*p.Suggestions)...)
		}
		out = t.Clone()
		return list, nil
	})
	b.mu.Unlock()
	if err != nil {
		return dom.Task{}, err
	}

	if titleChanged {
		b.notifier.Notify(notify.LevelSuccess, msgUpdated)
	}
	return out, nil
}

func validateSubtasks(list []dom.Subtask) error {
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if s.ID == "" || strings.TrimSpace(s.Title) == "" {
			return ErrInvalidSubtask
		}
		if _, dup := seen[s.ID]; dup {
			return ErrInvalidSubtask
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// RegenerateSuggestions replaces the task's suggestions with a fresh fetch for
// its current title. If the task is deleted while the fetch runs the result is dropped.
func (b *BoardService) RegenerateSuggestions(ctx context.Context, id string) (dom.Task, error) {
	b.mu.Lock()
	b.refresh(ctx)
	i := indexOf(b.tasks, id)
	if i < 0 {
		b.mu.Unlock()
		b.notifier.Notify(notify.LevelError, msgRegenFailed)
		return dom.Task{}, ErrNotFound
	}
	title := b.tasks[i].Title
	b.mu.Unlock()

	suggestions := b.fetch(ctx, title, true)

	var out dom.Task
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		list[i].Suggestions = append([]string{}, suggestions...)
		out = list[i].Clone()
		return list, nil
	})
	if errors.Is(err, ErrNotFound) {
		log.Printf("board: task %s deleted during suggestion fetch, dropping result", id)
	}
	if err != nil {
		return dom.Task{}, err
	}
	return out, nil
}

// updateSubtasks applies fn to the task's subtasks and commits the result.
func (b *BoardService) updateSubtasks(ctx context.Context, id string, fn func(t *dom.Task) error) (dom.Task, error) {
	var out dom.Task
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		if err := fn(&list[i]); err != nil {
			return nil, err
		}
		out = list[i].Clone()
		return list, nil
	})
	if err != nil {
		return dom.Task{}, err
	}
	return out, nil
}

func (b *BoardService) AddSubtask(ctx context.Context, taskID, title string) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrEmptyTitle
	}
	id, err := b.newID()
	if err != nil {
		return dom.Task{}, fmt.Errorf("generate id: %w", err)
	}
	t, err := b.updateSubtasks(ctx, taskID, func(t *dom.Task) error {
		t.Subtasks = append(t.Subtasks, dom.Subtask{ID: id, Title: title})
		return nil
	})
	if err != nil {
		return dom.Task{}, err
	}
	b.notifier.Notify(notify.LevelSuccess, msgSubtaskAdded)
	return t, nil
}

func (b *BoardService) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (dom.Task, error) {
	return b.updateSubtasks(ctx, taskID, func(t *dom.Task) error {
		j := t.FindSubtask(subtaskID)
		if j < 0 {
			return ErrNotFound
		}
		t.Subtasks[j].Completed = !t.Subtasks[j].Completed
		return nil
	})
}

func (b *BoardService) EditSubtask(ctx context.Context, taskID, subtaskID, title string) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrEmptyTitle
	}
	return b.updateSubtasks(ctx, taskID, func(t *dom.Task) error {
		j := t.FindSubtask(subtaskID)
		if j < 0 {
			return ErrNotFound
		}
		t.Subtasks[j].Title = title
		return nil
	})
}

// DeleteSubtask removes the subtask. Unknown ids are a no-op, like Delete.
func (b *BoardService) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mutate(ctx, func(list []dom.Task) ([]dom.Task, error) {
		i := indexOf(list, taskID)
		if i < 0 {
			return list, errUnchanged
		}
		j := list[i].FindSubtask(subtaskID)
		if j < 0 {
			return list, errUnchanged
		}
		subs := list[i].Subtasks
		list[i].Subtasks = append(subs[:j:j], subs[j+1:]...)
		return list, nil
	})
}
