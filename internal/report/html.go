package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/pipeline"
	"github.com/nao1215/chartbook/internal/visual"
)

// HTMLWriter serializes a render model as a single self-contained HTML
// page: one built-in stylesheet, charts as inline SVG, no scripts and
// no external fetches. The output carries nothing time-dependent, so
// rendering the same model twice produces identical bytes.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates a new HTMLWriter that writes to the specified output.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the model as a complete HTML document and writes it to
// the underlying output. It returns the number of bytes written.
func (w *HTMLWriter) Write(rm *pipeline.RenderModel) (int, error) {
	var b strings.Builder

	title := rm.Title
	if title == "" {
		title = "Report"
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", esc(title))
	b.WriteString("<style>\n" + stylesheet + "</style>\n</head>\n<body>\n")

	b.WriteString(`<header class="report">` + "\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(title))
	if rm.Description != "" {
		fmt.Fprintf(&b, `<p class="description">%s</p>`+"\n", esc(rm.Description))
	}
	var meta []string
	if rm.Author != "" {
		meta = append(meta, rm.Author)
	}
	if rm.LastUpdated != "" {
		meta = append(meta, "Last updated "+rm.LastUpdated)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, `<p class="meta">%s</p>`+"\n", esc(strings.Join(meta, " · ")))
	}
	b.WriteString("</header>\n<main>\n")

	for i := range rm.Pages {
		w.writePage(&b, &rm.Pages[i])
	}

	b.WriteString("</main>\n<footer>Generated by chartbook</footer>\n</body>\n</html>\n")

	return w.output.Write([]byte(b.String()))
}

func (w *HTMLWriter) writePage(b *strings.Builder, page *pipeline.PageModel) {
	b.WriteString(`<section class="page">` + "\n")
	if page.Title != "" {
		fmt.Fprintf(b, "<h2>%s</h2>\n", esc(page.Title))
	}
	if page.Description != "" {
		fmt.Fprintf(b, `<p class="description">%s</p>`+"\n", esc(page.Description))
	}
	if page.LastUpdated != "" {
		fmt.Fprintf(b, `<p class="meta">Last updated %s</p>`+"\n", esc(page.LastUpdated))
	}
	for i := range page.Rows {
		w.writeNode(b, &page.Rows[i])
	}
	b.WriteString("</section>\n")
}

func (w *HTMLWriter) writeNode(b *strings.Builder, n *pipeline.NodeModel) {
	if n.Visual != nil {
		w.writeVisual(b, n.Visual)
		return
	}
	dir := "row"
	if n.Direction == "column" {
		dir = "column"
	}
	fmt.Fprintf(b, `<div class="layout %s">`+"\n", dir)
	for i := range n.Children {
		w.writeNode(b, &n.Children[i])
	}
	b.WriteString("</div>\n")
}

func (w *HTMLWriter) writeVisual(b *strings.Builder, v *visual.Model) {
	fmt.Fprintf(b, `<div class="visual"%s>`+"\n", flexStyle(v.Common))
	if v.Title != "" {
		fmt.Fprintf(b, "<h3>%s</h3>\n", esc(v.Title))
	}

	switch {
	case v.Empty != nil:
		fmt.Fprintf(b, `<div class="empty">%s</div>`, esc(v.Empty.Reason))
	case v.Card != nil:
		fmt.Fprintf(b, `<div class="card">%s</div>`, esc(v.Card.Body))
	case v.KPI != nil:
		writeKPI(b, v.KPI)
	case v.Gauge != nil:
		b.WriteString(svgGauge(v.Gauge))
	case v.Pie != nil:
		b.WriteString(svgPieChart(v.Pie))
	case v.StackedBar != nil:
		b.WriteString(svgBarChart(v.StackedBar, true))
	case v.ClusteredBar != nil:
		b.WriteString(svgBarChart(v.ClusteredBar, false))
	case v.Scatter != nil:
		b.WriteString(svgScatterChart(v.Scatter))
	case v.Table != nil:
		writeTable(b, v.Table)
	case v.Checklist != nil:
		writeChecklist(b, v.Checklist)
	case v.Line != nil:
		b.WriteString(svgSeriesChart(v.Line, false))
	case v.Area != nil:
		b.WriteString(svgSeriesChart(v.Area, true))
	case v.Histogram != nil:
		b.WriteString(svgHistogram(v.Histogram))
	case v.BoxPlot != nil:
		b.WriteString(svgBoxPlot(v.BoxPlot))
	}

	b.WriteString("\n</div>\n")
}

func writeKPI(b *strings.Builder, k *visual.KPIModel) {
	class := "kpi"
	if k.Classification != visual.ClassNone {
		class += " " + string(k.Classification)
	}
	fmt.Fprintf(b, `<div class="%s">`, class)
	fmt.Fprintf(b, `<span class="kpi-value">%s</span>`, esc(k.Display))
	if k.Delta != nil {
		d := *k.Delta
		arrow, cls := "&#9650;", "up"
		if d < 0 {
			arrow, cls = "&#9660;", "down"
		}
		fmt.Fprintf(b, `<span class="kpi-delta %s">%s %s</span>`, cls, arrow, esc(format.Number(math.Abs(d), -1)))
	}
	b.WriteString("</div>")
}

func writeTable(b *strings.Builder, t *visual.TableModel) {
	b.WriteString("<table>\n<thead><tr>")
	for i, col := range t.Columns {
		fmt.Fprintf(b, `<th class="%s">%s</th>`, alignClass(t.Aligns, i), esc(col))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			fmt.Fprintf(b, `<td class="%s">%s</td>`, alignClass(t.Aligns, i), esc(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
}

func alignClass(aligns []string, i int) string {
	if i < len(aligns) && aligns[i] == "right" {
		return "num"
	}
	return "txt"
}

func writeChecklist(b *strings.Builder, c *visual.ChecklistModel) {
	b.WriteString(`<ul class="checklist">` + "\n")
	for _, item := range c.Items {
		fmt.Fprintf(b, `<li class="%s"><span class="mark">%s</span>%s`,
			item.Status, statusMark(item.Status), esc(item.Label))
		if item.Due != nil {
			fmt.Fprintf(b, ` <span class="due">due %s</span>`, esc(format.Date(*item.Due)))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
}

func statusMark(s visual.ItemStatus) string {
	switch s {
	case visual.StatusComplete:
		return "&#10003;"
	case visual.StatusOverdue:
		return "&#10007;"
	case visual.StatusWarning:
		return "!"
	default:
		return "&#9675;"
	}
}

// flexStyle turns the shared flex field into an inline style. The
// remaining common fields ride through on the JSON model untouched.
func flexStyle(common map[string]any) string {
	f, ok := common["flex"]
	if !ok {
		return ""
	}
	switch v := f.(type) {
	case float64:
		return fmt.Sprintf(` style="flex: %g"`, v)
	case int:
		return fmt.Sprintf(` style="flex: %d"`, v)
	case string:
		if v != "" {
			return fmt.Sprintf(` style="flex: %s"`, esc(v))
		}
	}
	return ""
}

// stylesheet is the single built-in look. Reports stay self-contained:
// no external fonts, no scripts, no CDN fetches.
const stylesheet = `:root { color-scheme: light; }
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; color: #263238; background: #f5f7f9; }
header.report { padding: 28px 32px 20px; background: #fff; border-bottom: 1px solid #e0e4e8; }
header.report h1 { margin: 0 0 6px; font-size: 26px; }
.description { margin: 4px 0; color: #546e7a; }
.meta { margin: 4px 0 0; color: #78909c; font-size: 13px; }
main { padding: 24px 32px; max-width: 1200px; margin: 0 auto; }
section.page { margin-bottom: 36px; }
section.page h2 { font-size: 20px; margin: 0 0 4px; border-bottom: 2px solid #2196f3; padding-bottom: 6px; }
.layout { display: flex; gap: 16px; }
.layout.row { flex-direction: row; flex-wrap: wrap; }
.layout.column { flex-direction: column; }
.visual { background: #fff; border: 1px solid #e0e4e8; border-radius: 6px; padding: 16px; margin: 8px 0; flex: 1; min-width: 0; overflow-x: auto; }
.visual h3 { margin: 0 0 10px; font-size: 15px; color: #37474f; }
.empty { padding: 24px; text-align: center; color: #90a4ae; font-style: italic; background: #fafbfc; border: 1px dashed #cfd8dc; border-radius: 4px; }
.card { white-space: pre-wrap; line-height: 1.5; }
.kpi-value { font-size: 34px; font-weight: 700; }
.kpi.ok .kpi-value { color: #2e7d32; }
.kpi.warning .kpi-value { color: #ef6c00; }
.kpi.breach .kpi-value { color: #c62828; }
.kpi-delta { margin-left: 10px; font-size: 14px; }
.kpi-delta.up { color: #2e7d32; }
.kpi-delta.down { color: #c62828; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th, td { padding: 6px 10px; border-bottom: 1px solid #eceff1; }
th { text-align: left; background: #f5f7f9; }
th.num, td.num { text-align: right; font-variant-numeric: tabular-nums; }
ul.checklist { list-style: none; margin: 0; padding: 0; }
ul.checklist li { padding: 6px 0; border-bottom: 1px solid #eceff1; }
ul.checklist .mark { display: inline-block; width: 1.4em; font-weight: 700; }
li.complete .mark { color: #2e7d32; }
li.overdue .mark { color: #c62828; }
li.warning .mark { color: #ef6c00; }
li.pending .mark { color: #90a4ae; }
.due { color: #78909c; font-size: 12px; }
li.overdue .due { color: #c62828; }
footer { padding: 16px 32px; color: #90a4ae; font-size: 12px; text-align: center; }
`
