package repo

import (
	"context"
	"testing"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []dom.Task {
	return []dom.Task{
		{
			ID:          "t1",
			Title:       "Write quarterly report",
			Priority:    dom.PriorityHigh,
			Column:      dom.ColumnTodo,
			Subtasks:    []dom.Subtask{{ID: "s1", Title: "Outline", Completed: true}},
			Suggestions: []string{"Break it down into sections"},
		},
		{
			ID:          "t2",
			Title:       "Plan meeting",
			Priority:    dom.PriorityLow,
			Column:      dom.ColumnInProgress,
			Subtasks:    []dom.Subtask{},
			Suggestions: []string{},
		},
	}
}

func TestKVTaskRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := NewKVTaskRepo(kv)

			list, err := r.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, list, "nothing saved yet")

			require.NoError(t, r.Save(ctx, sampleTasks()))
			list, err = r.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleTasks(), list)
		})
	}
}

func TestEncodeTasksShape(t *testing.T) {
	b, err := EncodeTasks([]dom.Task{{ID: "t1", Title: "x", Priority: dom.PriorityMedium, Column: dom.ColumnInProgress}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1","title":"x","priority":"medium","aiSuggestions":[],"column":"in-progress","subtasks":[]}]`, string(b))
}

func TestDecodeTasksAcceptsLegacyColumn(t *testing.T) {
	list, err := DecodeTasks([]byte(`[{"id":"t1","title":"x","priority":"low","aiSuggestions":["a"],"column":"inProgress","subtasks":[]}]`))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dom.ColumnInProgress, list[0].Column)
}

func TestDecodeTasksRejectsBadShape(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"tasks":`,
		"object":            `{"id":"t1"}`,
		"missing id":        `[{"title":"x","priority":"low","column":"todo"}]`,
		"empty title":       `[{"id":"t1","title":"  ","priority":"low","column":"todo"}]`,
		"unknown priority":  `[{"id":"t1","title":"x","priority":"urgent","column":"todo"}]`,
		"unknown column":    `[{"id":"t1","title":"x","priority":"low","column":"archived"}]`,
		"duplicate task id": `[{"id":"t1","title":"x","priority":"low","column":"todo"},{"id":"t1","title":"y","priority":"low","column":"done"}]`,
		"duplicate subtask": `[{"id":"t1","title":"x","priority":"low","column":"todo","subtasks":[{"id":"s","title":"a"},{"id":"s","title":"b"}]}]`,
	}
	for name, raw := range cases {
		_, err := DecodeTasks([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidSnapshot, name)
	}
}

func TestCredentialRepo(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := NewCredentialRepo(kv)

			key, err := r.APIKey(ctx)
			require.NoError(t, err)
			assert.Empty(t, key)

			require.NoError(t, r.SetAPIKey(ctx, "  sk-abc \n"))
			key, err = r.APIKey(ctx)
			require.NoError(t, err)
			assert.Equal(t, "sk-abc", key)

			v, ok, err := kv.Get(ctx, KeyCredential)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "sk-abc", v)

			require.NoError(t, r.ClearAPIKey(ctx))
			key, err = r.APIKey(ctx)
			require.NoError(t, err)
			assert.Empty(t, key)
		})
	}
}
