package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColumn(t *testing.T) {
	cases := map[string]Column{
		"todo":        ColumnTodo,
		" Done ":      ColumnDone,
		"in-progress": ColumnInProgress,
		"inProgress":  ColumnInProgress,
		"in_progress": ColumnInProgress,
	}
	for in, want := range cases {
		got, ok := ParseColumn(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseColumn("archived")
	assert.False(t, ok)
	assert.False(t, Column("inProgress").Valid(), "only the normalized value is valid")
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("HIGH")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	task := Task{}
	assert.Equal(t, 0, task.Progress())

	task.Subtasks = []Subtask{{ID: "a", Completed: true}, {ID: "b"}, {ID: "c"}}
	assert.Equal(t, 33, task.Progress())

	task.Subtasks[1].Completed = true
	assert.Equal(t, 67, task.Progress())

	task.Subtasks = []Subtask{{ID: "a", Completed: true}, {ID: "b"}}
	assert.Equal(t, 50, task.Progress())
}

func TestCloneIsDeep(t *testing.T) {
	orig := Task{
		ID:          "t1",
		Subtasks:    []Subtask{{ID: "s1", Title: "one"}},
		Suggestions: []string{"a"},
	}
	c := orig.Clone()
	c.Subtasks[0].Title = "changed"
	c.Suggestions[0] = "changed"

	assert.Equal(t, "one", orig.Subtasks[0].Title)
	assert.Equal(t, "a", orig.Suggestions[0])
	assert.Equal(t, 0, orig.FindSubtask("s1"))
	assert.Equal(t, -1, orig.FindSubtask("nope"))
}
