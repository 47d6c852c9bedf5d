// Package export renders the board as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
	"github.com/Weskio/ai-task-whisperer/internal/repo"

	"github.com/jung-kurt/gofpdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// TaskSource is satisfied by service.BoardService.
type TaskSource interface {
	Tasks() []dom.Task
}

type Exporter struct{ src TaskSource }

func NewExporter(src TaskSource) *Exporter { return &Exporter{src: src} }

// ContentType returns the MIME type for format, or "" if the format is unknown.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	}
	return ""
}

// Export renders every task. The JSON form is the persisted snapshot shape,
// so it can be loaded back as a board.
func (e *Exporter) Export(format string) ([]byte, error) {
	all := e.src.Tasks()
	switch strings.ToLower(format) {
	case "json":
		raw, err := repo.EncodeTasks(all)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "title", "priority", "column", "subtasks_done", "subtasks_total", "progress", "suggestions"})
		for _, t := range all {
			done := 0
			for _, s := range t.Subtasks {
				if s.Completed {
					done++
				}
			}
			_ = w.Write([]string{
				t.ID, t.Title, string(t.Priority), string(t.Column),
				strconv.Itoa(done), strconv.Itoa(len(t.Subtasks)), strconv.Itoa(t.Progress()),
				strings.Join(t.Suggestions, "; "),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		return renderPDF(all)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

var columnTitles = map[dom.Column]string{
	dom.ColumnTodo:       "To Do",
	dom.ColumnInProgress: "In Progress",
	dom.ColumnDone:       "Done",
}

func renderPDF(all []dom.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Task Board")
	pdf.Ln(12)

	for _, col := range dom.Columns {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(40, 8, columnTitles[col])
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		for _, t := range all {
			if t.Column != col {
				continue
			}
			line := fmt.Sprintf("[%s] %s (%d%%)", t.Priority, t.Title, t.Progress())
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
			for _, s := range t.Subtasks {
				mark := "[ ]"
				if s.Completed {
					mark = "[x]"
				}
				pdf.MultiCell(0, 5, tr("    "+mark+" "+s.Title), "0", "L", false)
			}
			for _, s := range t.Suggestions {
				pdf.MultiCell(0, 5, tr("    * "+s), "0", "L", false)
			}
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
