package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
	"github.com/Weskio/ai-task-whisperer/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []dom.Task

func (s staticSource) Tasks() []dom.Task { return s }

var board = staticSource{
	{
		ID: "t1", Title: "Write report", Priority: dom.PriorityHigh, Column: dom.ColumnTodo,
		Subtasks:    []dom.Subtask{{ID: "s1", Title: "Outline", Completed: true}, {ID: "s2", Title: "Draft"}},
		Suggestions: []string{"Break it down into sections", "Gather necessary data first"},
	},
	{
		ID: "t2", Title: "Café visit", Priority: dom.PriorityLow, Column: dom.ColumnDone,
		Subtasks: []dom.Subtask{}, Suggestions: []string{},
	},
}

func TestExportJSONRoundTrips(t *testing.T) {
	data, err := NewExporter(board).Export("json")
	require.NoError(t, err)

	list, err := repo.DecodeTasks(data)
	require.NoError(t, err)
	assert.Equal(t, []dom.Task(board), list)
}

func TestExportCSV(t *testing.T) {
	data, err := NewExporter(board).Export("CSV")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"t1", "Write report", "high", "todo", "1", "2", "50",
		"Break it down into sections; Gather necessary data first"}, rows[1])
	assert.Equal(t, "done", rows[2][3])
}

func TestExportPDF(t *testing.T) {
	data, err := NewExporter(board).Export("pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := NewExporter(board).Export("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Empty(t, ContentType("xlsx"))
	assert.Equal(t, "text/csv", ContentType("csv"))
}
