package report

import (
	"io"
	"math"
	"strconv"

	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/pipeline"
	"github.com/nao1215/chartbook/internal/visual"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxMarkdownRows caps flattened chart tables so a long series does not
// swallow the document.
const maxMarkdownRows = 20

// MarkdownWriter outputs reports in Markdown format. This format is
// designed for documentation and sharing: charts flatten to data
// tables, except pie charts which render as mermaid diagrams.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(rm *pipeline.RenderModel) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, rm)
	for i := range rm.Pages {
		w.writePage(md, &rm.Pages[i], i)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and document metadata.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, rm *pipeline.RenderModel) {
	title := rm.Title
	if title == "" {
		title = "Report"
	}
	md.H1(title)
	md.PlainText("")

	if rm.Description != "" {
		md.PlainText(rm.Description)
		md.PlainText("")
	}

	rows := [][]string{
		{"Pages", strconv.Itoa(len(rm.Pages))},
		{"Visuals", strconv.Itoa(rm.VisualCount())},
	}
	if rm.Author != "" {
		rows = append(rows, []string{"Author", rm.Author})
	}
	if rm.LastUpdated != "" {
		rows = append(rows, []string{"Last Updated", rm.LastUpdated})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePage writes one page section and its visuals in layout order.
func (w *MarkdownWriter) writePage(md *markdown.Markdown, page *pipeline.PageModel, index int) {
	title := page.Title
	if title == "" {
		title = "Page " + strconv.Itoa(index+1)
	}
	md.H2(title)
	md.PlainText("")

	if page.Description != "" {
		md.PlainText(page.Description)
		md.PlainText("")
	}
	if page.LastUpdated != "" {
		md.PlainTextf("_Last updated %s_", page.LastUpdated)
		md.PlainText("")
	}

	for i := range page.Rows {
		w.writeNode(md, &page.Rows[i])
	}
}

// writeNode flattens the layout tree. Markdown is linear, so container
// direction is dropped and leaves emit in document order.
func (w *MarkdownWriter) writeNode(md *markdown.Markdown, n *pipeline.NodeModel) {
	if n.Visual != nil {
		w.writeVisual(md, n.Visual)
		return
	}
	for i := range n.Children {
		w.writeNode(md, &n.Children[i])
	}
}

// writeVisual writes one visual under its own heading.
func (w *MarkdownWriter) writeVisual(md *markdown.Markdown, v *visual.Model) {
	if v.Title != "" {
		md.H3(v.Title)
		md.PlainText("")
	}

	switch {
	case v.Empty != nil:
		md.Note(v.Empty.Reason)
		md.PlainText("")
	case v.Card != nil:
		md.PlainText(v.Card.Body)
		md.PlainText("")
	case v.KPI != nil:
		w.writeKPI(md, v.Title, v.KPI)
	case v.Gauge != nil:
		w.writeGauge(md, v.Title, v.Gauge)
	case v.Pie != nil:
		w.writePieChart(md, v.Title, v.Pie)
	case v.StackedBar != nil:
		w.writeSeriesTable(md, "Category", v.StackedBar.Categories, v.StackedBar.Series)
	case v.ClusteredBar != nil:
		w.writeSeriesTable(md, "Category", v.ClusteredBar.Categories, v.ClusteredBar.Series)
	case v.Scatter != nil:
		w.writeScatter(md, v.Scatter)
	case v.Table != nil:
		md.Table(markdown.TableSet{Header: v.Table.Columns, Rows: v.Table.Rows})
		md.PlainText("")
	case v.Checklist != nil:
		w.writeChecklist(md, v.Checklist)
	case v.Line != nil:
		w.writeSeries(md, v.Line)
	case v.Area != nil:
		w.writeSeries(md, v.Area)
	case v.Histogram != nil:
		w.writeHistogram(md, v.Histogram)
	case v.BoxPlot != nil:
		w.writeBoxPlot(md, v.BoxPlot)
	}
}

// writeKPI writes the headline value, its delta and a severity alert
// when the value sits past a threshold.
func (w *MarkdownWriter) writeKPI(md *markdown.Markdown, title string, k *visual.KPIModel) {
	line := "**" + k.Display + "**"
	if k.Delta != nil {
		d := *k.Delta
		if d >= 0 {
			line += " (+" + format.Number(d, -1) + ")"
		} else {
			line += " (" + format.Number(d, -1) + ")"
		}
	}
	md.PlainText(line)
	md.PlainText("")

	if title == "" {
		title = "Value"
	}
	switch k.Classification {
	case visual.ClassBreach:
		md.Cautionf("%s is past its breach threshold.", title)
		md.PlainText("")
	case visual.ClassWarning:
		md.Warningf("%s is past its warning threshold.", title)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeGauge(md *markdown.Markdown, title string, g *visual.GaugeModel) {
	md.PlainTextf("**%s** (range %s to %s)",
		g.Display, format.Number(g.Min, -1), format.Number(g.Max, -1))
	md.PlainText("")

	if title == "" {
		title = "Value"
	}
	switch g.Classification {
	case visual.ClassBreach:
		md.Cautionf("%s is past its breach threshold.", title)
		md.PlainText("")
	case visual.ClassWarning:
		md.Warningf("%s is past its warning threshold.", title)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the slice values.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, title string, p *visual.PieModel) {
	if title == "" {
		title = "Distribution"
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(title),
		piechart.WithShowData(true),
	)
	for _, s := range p.Slices {
		chart.LabelAndIntValue(s.Label, uint64(math.Round(s.Value)))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSeriesTable flattens a category axis with its series into a table.
func (w *MarkdownWriter) writeSeriesTable(md *markdown.Markdown, axis string, labels []string, series []visual.Series) {
	header := make([]string, 0, len(series)+1)
	header = append(header, axis)
	for _, s := range series {
		header = append(header, s.Name)
	}

	shown := len(labels)
	if shown > maxMarkdownRows {
		shown = maxMarkdownRows
	}
	rows := make([][]string, 0, shown)
	for i := 0; i < shown; i++ {
		row := make([]string, 0, len(series)+1)
		row = append(row, labels[i])
		for _, s := range series {
			if i < len(s.Values) {
				row = append(row, format.Number(s.Values[i], -1))
			} else {
				row = append(row, format.NoData)
			}
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{Header: header, Rows: rows})
	if rest := len(labels) - shown; rest > 0 {
		md.PlainTextf("_%d more rows not shown_", rest)
	}
	md.PlainText("")
}

// writeSeries flattens a line or area chart into a data table, with the
// threshold noted beneath it.
func (w *MarkdownWriter) writeSeries(md *markdown.Markdown, m *visual.SeriesModel) {
	labels := make([]string, len(m.X))
	for i := range m.X {
		if i < len(m.XLabels) && m.XLabels[i] != "" {
			labels[i] = m.XLabels[i]
		} else {
			labels[i] = format.Number(m.X[i], -1)
		}
	}
	w.writeSeriesTable(md, "X", labels, m.Series)

	if t := m.Threshold; t != nil {
		md.PlainTextf("Threshold: %s (%s), crossed %d time(s).",
			format.Number(t.Value, -1), t.Mode, len(t.Crossings))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeScatter(md *markdown.Markdown, m *visual.ScatterModel) {
	md.PlainTextf("%d points, x in [%s, %s], y in [%s, %s].",
		len(m.Points),
		format.Number(m.XMin, -1), format.Number(m.XMax, -1),
		format.Number(m.YMin, -1), format.Number(m.YMax, -1))
	md.PlainText("")

	if reg := m.Regression; reg != nil {
		md.PlainTextf("Fit: y = %s x + %s (r&#178; = %s)",
			format.Number(reg.Slope, -1), format.Number(reg.Intercept, -1), format.Number(reg.R2, 3))
		md.PlainText("")
	}
}

// writeChecklist writes items as GitHub task list checkboxes.
func (w *MarkdownWriter) writeChecklist(md *markdown.Markdown, c *visual.ChecklistModel) {
	boxes := make([]markdown.CheckBoxSet, 0, len(c.Items))
	for _, item := range c.Items {
		text := item.Label
		if item.Due != nil {
			text += " (due " + format.Date(*item.Due) + ")"
		}
		switch item.Status {
		case visual.StatusOverdue:
			text += " **overdue**"
		case visual.StatusWarning:
			text += " _due soon_"
		}
		boxes = append(boxes, markdown.CheckBoxSet{
			Checked: item.Status == visual.StatusComplete,
			Text:    text,
		})
	}
	md.CheckBox(boxes)
	md.PlainText("")
}

func (w *MarkdownWriter) writeHistogram(md *markdown.Markdown, m *visual.HistogramModel) {
	rows := make([][]string, 0, len(m.Bins))
	for _, bin := range m.Bins {
		rows = append(rows, []string{
			format.Number(bin.Lo, -1) + " to " + format.Number(bin.Hi, -1),
			strconv.Itoa(bin.Count),
		})
	}
	md.Table(markdown.TableSet{Header: []string{"Range", "Count"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeBoxPlot(md *markdown.Markdown, m *visual.BoxPlotModel) {
	rows := make([][]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		rows = append(rows, []string{
			g.Label,
			format.Number(g.Min, -1),
			format.Number(g.Q1, -1),
			format.Number(g.Median, -1),
			format.Number(g.Q3, -1),
			format.Number(g.Max, -1),
			strconv.Itoa(len(g.Outliers)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Group", "Min", "Q1", "Median", "Q3", "Max", "Outliers"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [chartbook](https://github.com/nao1215/chartbook)*")
}
