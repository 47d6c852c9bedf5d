package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
)

// ErrInvalidSnapshot is returned by Load when the stored list does not match the task shape.
var ErrInvalidSnapshot = errors.New("invalid task snapshot")

// TaskRepo persists the whole task list as one snapshot.
//
// Update is an atomic load-modify-save. fn gets the stored list and the
// decode error, if any (a missing snapshot is a nil list and no error).
// An error from fn aborts the write and is returned as is.
type TaskRepo interface {
	Load(ctx context.Context) ([]dom.Task, error)
	Save(ctx context.Context, list []dom.Task) error
	Update(ctx context.Context, fn func(stored []dom.Task, decodeErr error) ([]dom.Task, error)) error
}

// Persisted shape. Field names match the original browser schema.
type subtaskRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type taskRecord struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Priority      string          `json:"priority"`
	AISuggestions []string        `json:"aiSuggestions"`
	Column        string          `json:"column"`
	Subtasks      []subtaskRecord `json:"subtasks"`
}

// KVTaskRepo stores the snapshot under a single key of a KV.
type KVTaskRepo struct {
	kv  KV
	key string
}

func NewKVTaskRepo(kv KV) *KVTaskRepo {
	return &KVTaskRepo{kv: kv, key: KeyTasks}
}

// Load returns (nil, nil) when nothing has been saved yet.
func (r *KVTaskRepo) Load(ctx context.Context) ([]dom.Task, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}
	if !ok {
		return nil, nil
	}
	return DecodeTasks([]byte(raw))
}

func (r *KVTaskRepo) Save(ctx context.Context, list []dom.Task) error {
	b, err := EncodeTasks(list)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, string(b))
}

func (r *KVTaskRepo) Update(ctx context.Context, fn func([]dom.Task, error) ([]dom.Task, error)) error {
	return r.kv.Update(ctx, r.key, func(cur string, ok bool) (string, error) {
		var (
			stored    []dom.Task
			decodeErr error
		)
		if ok {
			stored, decodeErr = DecodeTasks([]byte(cur))
		}
		next, err := fn(stored, decodeErr)
		if err != nil {
			return "", err
		}
		b, err := EncodeTasks(next)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// EncodeTasks serializes the list in the persisted shape. Nil slices are written as [].
func EncodeTasks(list []dom.Task) ([]byte, error) {
	out := make([]taskRecord, len(list))
	for i, t := range list {
		rec := taskRecord{
			ID:            t.ID,
			Title:         t.Title,
			Priority:      string(t.Priority),
			AISuggestions: t.Suggestions,
			Column:        string(t.Column),
			Subtasks:      make([]subtaskRecord, len(t.Subtasks)),
		}
		if rec.AISuggestions == nil {
			rec.AISuggestions = []string{}
		}
		for j, s := range t.Subtasks {
			rec.Subtasks[j] = subtaskRecord{ID: s.ID, Title: s.Title, Completed: s.Completed}
		}
		out[i] = rec
	}
	return json.Marshal(out)
}

// DecodeTasks parses and validates a snapshot. Any shape mismatch yields ErrInvalidSnapshot.
func DecodeTasks(data []byte) ([]dom.Task, error) {
	var recs []taskRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	list := make([]dom.Task, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, rec := range recs {
		t, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrInvalidSnapshot, i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %q", ErrInvalidSnapshot, t.ID)
		}
		seen[t.ID] = struct{}{}
		list = append(list, t)
	}
	return list, nil
}

func (rec taskRecord) toDomain() (dom.Task, error) {
	if rec.ID == "" {
		return dom.Task{}, errors.New("missing id")
	}
	if strings.TrimSpace(rec.Title) == "" {
		return dom.Task{}, errors.New("missing title")
	}
	prio, ok := dom.ParsePriority(rec.Priority)
	if !ok {
		return dom.Task{}, fmt.Errorf("unknown priority %q", rec.Priority)
	}
	col, ok := dom.ParseColumn(rec.Column)
	if !ok {
		return dom.Task{}, fmt.Errorf("unknown column %q", rec.Column)
	}
	t := dom.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Priority:    prio,
		Column:      col,
		Subtasks:    make([]dom.Subtask, 0, len(rec.Subtasks)),
		Suggestions: make([]string, 0, len(rec.AISuggestions)),
	}
	t.Suggestions = append(t.Suggestions, rec.AISuggestions...)
	seen := make(map[string]struct{}, len(rec.Subtasks))
	for _, s := range rec.Subtasks {
		if s.ID == "" {
			return dom.Task{}, errors.New("subtask missing id")
		}
		if _, dup := seen[s.ID]; dup {
			return dom.Task{}, fmt.Errorf("duplicate subtask id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		t.Subtasks = append(t.Subtasks, dom.Subtask{ID: s.ID, Title: s.Title, Completed: s.Completed})
	}
	return t, nil
}
