package visual

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/model"
)

// Context carries the per-visual inputs shared by every family builder.
type Context struct {
	// Table is the visual's normalized dataset, nil when the reference
	// dangles or normalization failed.
	Table *dataset.Table

	// DataReason explains a nil Table for the empty state.
	DataReason string

	// Now anchors checklist due-date classification. Callers pin it for
	// reproducible output.
	Now time.Time

	// Render evaluates a template value to its display string.
	Render func(model.TemplateValue) string
}

// table returns the context's table, or the empty state a data-driven
// builder should carry when no table is available.
func (c *Context) table() (*dataset.Table, *EmptyState) {
	if c.Table != nil {
		return c.Table, nil
	}
	reason := c.DataReason
	if reason == "" {
		reason = "no dataset"
	}
	return nil, &EmptyState{Reason: reason}
}

// render evaluates v, or returns "" when the context has no renderer or
// the value is empty.
func (c *Context) render(v model.TemplateValue) string {
	if c.Render == nil || v.IsZero() {
		return ""
	}
	return c.Render(v)
}

func emptyf(format string, args ...any) *EmptyState {
	return &EmptyState{Reason: fmt.Sprintf(format, args...)}
}

// builders dispatches a visual type tag to its family builder. Each
// builder decodes its own configuration from the visual's raw JSON and
// fills exactly one payload field, or Empty.
var builders = map[string]func(m *Model, raw json.RawMessage, ctx *Context){
	model.VisualCard:         buildCard,
	model.VisualKPI:          buildKPI,
	model.VisualGauge:        buildGauge,
	model.VisualPie:          buildPie,
	model.VisualStackedBar:   buildStackedBar,
	model.VisualClusteredBar: buildClusteredBar,
	model.VisualScatter:      buildScatter,
	model.VisualTable:        buildTable,
	model.VisualChecklist:    buildChecklist,
	model.VisualLineChart:    buildLine,
	model.VisualAreaChart:    buildArea,
	model.VisualHistogram:    buildHistogram,
	model.VisualBoxPlot:      buildBoxPlot,
}

// Build derives the render model for one visual. Failures of any kind
// stay inside the returned model as an EmptyState; Build never fails the
// surrounding page.
func Build(v *model.Visual, ctx *Context) *Model {
	m := &Model{Type: v.Type, Common: v.Common}

	var head struct {
		Title model.TemplateValue `json:"title"`
	}
	if err := json.Unmarshal(v.Config, &head); err == nil {
		m.Title = ctx.render(head.Title)
	}

	build, ok := builders[v.Type]
	if !ok {
		m.Empty = emptyf("%v: %q", ErrUnknownVisual, v.Type)
		return m
	}
	build(m, v.Config, ctx)
	return m
}

// resolveOr resolves ref against the table, falling back to the given
// column position when ref is unset. An unresolvable reference yields the
// empty state for a missing required column; what names the column's role
// in that message.
func resolveOr(t *dataset.Table, ref dataset.ColumnRef, fallback int, what string) (int, *EmptyState) {
	if ref.IsZero() {
		if fallback < 0 || fallback >= t.NumCols() {
			return 0, emptyf("no %s column", what)
		}
		return fallback, nil
	}
	col, ok := t.Resolve(ref)
	if !ok {
		return 0, emptyf("%s column %s not found", what, ref)
	}
	return col, nil
}

// resolveOptional resolves ref when set; an unset ref reports ok=false
// without an empty state, since the column's feature is simply skipped.
func resolveOptional(t *dataset.Table, ref dataset.ColumnRef) (int, bool) {
	if ref.IsZero() {
		return 0, false
	}
	return t.Resolve(ref)
}

// numericColumns returns the positions of all number-typed columns,
// excluding skip (pass -1 to exclude none).
func numericColumns(t *dataset.Table, skip int) []int {
	var cols []int
	for i, dt := range t.DTypes {
		if i != skip && dt == model.DTypeNumber {
			cols = append(cols, i)
		}
	}
	return cols
}

// seriesName labels a value series after its column.
func seriesName(t *dataset.Table, col int) string {
	if col >= 0 && col < len(t.Columns) {
		return t.Columns[col]
	}
	return fmt.Sprintf("series %d", col)
}
