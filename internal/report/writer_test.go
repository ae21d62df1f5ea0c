package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/chartbook/internal/pipeline"
	"github.com/nao1215/chartbook/internal/visual"
)

// createTestModel creates a render model with sample data for testing.
func createTestModel() *pipeline.RenderModel {
	delta := 120.0
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	days := 17

	return &pipeline.RenderModel{
		Title:       "Q1 <Sales> Report",
		Description: "Quarter in review",
		Author:      "Ops",
		LastUpdated: "2026-03-01",
		Pages: []pipeline.PageModel{
			{
				Title: "Overview",
				Rows: []pipeline.NodeModel{
					{
						Direction: "row",
						Children: []pipeline.NodeModel{
							{Visual: &visual.Model{Type: "kpi", Title: "Total Sales", KPI: &visual.KPIModel{
								Value:          2500,
								HasValue:       true,
								Display:        "2,500",
								Delta:          &delta,
								Classification: visual.ClassOK,
							}}},
							{Visual: &visual.Model{Type: "gauge", Title: "Progress", Gauge: &visual.GaugeModel{
								Value:    0.72,
								Min:      0,
								Max:      1,
								HasValue: true,
								Fraction: 0.72,
								Display:  "72%",
							}}},
						},
					},
					{Visual: &visual.Model{Type: "line", Title: "Trend", Line: &visual.SeriesModel{
						X:       []float64{0, 1, 2},
						XLabels: []string{"Jan", "Feb", "Mar"},
						Series:  []visual.Series{{Name: "Sales", Values: []float64{1000, math.NaN(), 1500}}},
						YMin:    1000,
						YMax:    1500,
					}}},
					{Visual: &visual.Model{Type: "pie", Title: "Mix", Pie: &visual.PieModel{
						Slices: []visual.Slice{
							{Label: "North", Value: 60, Fraction: 0.6},
							{Label: "South", Value: 40, Fraction: 0.4},
						},
						Total: 100,
					}}},
					{Visual: &visual.Model{Type: "table", Table: &visual.TableModel{
						Columns: []string{"Team", "Spend"},
						Rows:    [][]string{{"R&D", "1,000"}, {"Sales", "1,500"}},
						Aligns:  []string{"left", "right"},
					}}},
					{Visual: &visual.Model{Type: "checklist", Checklist: &visual.ChecklistModel{
						Items: []visual.ChecklistItem{
							{Label: "Close books", Status: visual.StatusComplete},
							{Label: "File report", Status: visual.StatusPending, Due: &due, DaysUntilDue: &days},
						},
					}}},
					{Visual: &visual.Model{Type: "kpi", Title: "Broken", Empty: &visual.EmptyState{
						Reason: `dataset "missing" not found`,
					}}},
				},
			},
			{
				Title: "Risks",
				Rows: []pipeline.NodeModel{
					{Visual: &visual.Model{Type: "kpi", Title: "Error Rate", KPI: &visual.KPIModel{
						Value:          9.1,
						HasValue:       true,
						Display:        "9.1",
						Classification: visual.ClassBreach,
					}}},
				},
			},
		},
	}
}

// TestJSONWriter tests the JSON render model writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		rm := createTestModel()

		n, err := w.Write(rm)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer holds %d", n, buf.Len())
		}

		var parsed pipeline.RenderModel
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.Title != "Q1 <Sales> Report" {
			t.Errorf("expected title %q, got %q", "Q1 <Sales> Report", parsed.Title)
		}
		if len(parsed.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(parsed.Pages))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})
}

// TestWithIndent tests the WithIndent JSON option.
func TestWithIndent(t *testing.T) {
	t.Parallel()

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})
}

// TestHTMLWriter tests the self-contained HTML writer.
func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes complete document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)

		n, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer holds %d", n, buf.Len())
		}

		output := buf.String()
		if !strings.HasPrefix(output, "<!DOCTYPE html>") {
			t.Error("expected output to start with a doctype")
		}
		if !strings.Contains(output, "<style>") {
			t.Error("expected inline stylesheet")
		}
		if strings.Contains(output, "<script") {
			t.Error("output must not carry scripts")
		}
		if !strings.Contains(output, "</html>") {
			t.Error("expected closing html tag")
		}
	})

	t.Run("escapes markup in text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Q1 &lt;Sales&gt; Report") {
			t.Error("expected title markup to be escaped")
		}
		if strings.Contains(output, "<Sales>") {
			t.Error("raw title markup leaked into the output")
		}
		if !strings.Contains(output, "R&amp;D") {
			t.Error("expected table cell ampersand to be escaped")
		}
	})

	t.Run("renders charts as inline SVG", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Gauge, line and pie each contribute one svg element.
		if got := strings.Count(output, "<svg"); got < 3 {
			t.Errorf("expected at least 3 inline svg elements, got %d", got)
		}
		if strings.Contains(output, "http://") && strings.Contains(output, "<img") {
			t.Error("charts must not load external images")
		}
	})

	t.Run("renders layout and visuals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `class="layout row"`) {
			t.Error("expected a row layout container")
		}
		if !strings.Contains(output, `class="kpi ok"`) {
			t.Error("expected kpi classification class")
		}
		if !strings.Contains(output, `class="kpi breach"`) {
			t.Error("expected breach classification class")
		}
		if !strings.Contains(output, `<td class="num">1,500</td>`) {
			t.Error("expected right-aligned numeric table cell")
		}
		if !strings.Contains(output, "due 2026-04-01") {
			t.Error("expected checklist due date")
		}
	})

	t.Run("shows empty state reason", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewHTMLWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `class="empty"`) {
			t.Error("expected an empty state element")
		}
		if !strings.Contains(output, "not found") {
			t.Error("expected the empty state reason text")
		}
	})

	t.Run("identical output for repeated writes", func(t *testing.T) {
		t.Parallel()

		rm := createTestModel()

		var buf1, buf2 bytes.Buffer
		if _, err := NewHTMLWriter(&buf1).Write(rm); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewHTMLWriter(&buf2).Write(rm); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
			t.Error("expected byte-identical output across writes of the same model")
		}
	})
}

// TestMarkdownWriter tests the Markdown render model writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Q1 <Sales> Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "## Overview") {
			t.Error("expected output to contain page header")
		}
		if !strings.Contains(output, "2026-03-01") {
			t.Error("expected output to contain last updated date")
		}
	})

	t.Run("writes visual headings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "### Trend") {
			t.Error("expected visual heading")
		}
		if !strings.Contains(output, "**2,500**") {
			t.Error("expected bold kpi value")
		}
	})

	t.Run("flattens table visual", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Team") {
			t.Error("expected table header in output")
		}
		if !strings.Contains(output, "R&D") {
			t.Error("expected table cell in output")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid code block")
		}
		if !strings.Contains(output, "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
		if !strings.Contains(output, "North") {
			t.Error("expected slice label in pie chart")
		}
	})

	t.Run("writes checklist as task list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "- [x] Close books") {
			t.Error("expected checked task list item")
		}
		if !strings.Contains(output, "- [ ] File report (due 2026-04-01)") {
			t.Error("expected unchecked task list item with due date")
		}
	})

	t.Run("includes GitHub alerts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected CAUTION alert for the breached kpi")
		}
		if !strings.Contains(output, "[!NOTE]") {
			t.Error("expected NOTE alert for the empty visual")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/nao1215/chartbook") {
			t.Error("expected footer with repository link")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewHTMLWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)

		n, err := multi.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		if !strings.HasPrefix(buf1.String(), "<!DOCTYPE html>") {
			t.Error("expected buf1 (HTML) to start with a doctype")
		}
		if !strings.HasPrefix(strings.TrimSpace(buf2.String()), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()

		n, err := multi.Write(createTestModel())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})

	t.Run("stops on first failing writer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		multi := NewMultiWriter(NewJSONWriter(failingOutput{}), NewJSONWriter(&buf))

		_, err := multi.Write(createTestModel())
		if err == nil {
			t.Fatal("expected an error from the failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped after a failure")
		}
	})
}

// failingOutput always fails, standing in for a closed or full sink.
type failingOutput struct{}

func (failingOutput) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}
