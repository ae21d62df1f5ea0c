package visual

import (
	"encoding/json"

	"github.com/nao1215/chartbook/internal/dataset"
)

// Box plot modes: raw computes the summary from a value column, summary
// trusts pre-calculated columns row by row.
const (
	BoxModeRaw     = "raw"
	BoxModeSummary = "summary"
)

type boxPlotConfig struct {
	Mode string `json:"mode"`

	// Raw mode fields.
	ValueColumn dataset.ColumnRef `json:"valueColumn"`
	GroupColumn dataset.ColumnRef `json:"groupColumn"`

	// Summary mode fields.
	LabelColumn  dataset.ColumnRef `json:"labelColumn"`
	MinColumn    dataset.ColumnRef `json:"minColumn"`
	Q1Column     dataset.ColumnRef `json:"q1Column"`
	MedianColumn dataset.ColumnRef `json:"medianColumn"`
	Q3Column     dataset.ColumnRef `json:"q3Column"`
	MaxColumn    dataset.ColumnRef `json:"maxColumn"`
}

func buildBoxPlot(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg boxPlotConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid box plot configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}

	var b *BoxPlotModel
	switch cfg.Mode {
	case "", BoxModeRaw:
		b, empty = buildBoxRaw(t, cfg)
	case BoxModeSummary:
		b, empty = buildBoxSummary(t, cfg)
	default:
		empty = emptyf("unknown box plot mode %q", cfg.Mode)
	}
	if empty != nil {
		m.Empty = empty
		return
	}
	m.BoxPlot = b
}

// buildBoxRaw computes per-group five-number summaries from the value
// column, grouped by the optional group column in first-seen order.
func buildBoxRaw(t *dataset.Table, cfg boxPlotConfig) (*BoxPlotModel, *EmptyState) {
	vcol, empty := resolveOr(t, cfg.ValueColumn, 0, "value")
	if empty != nil {
		return nil, empty
	}
	gcol, grouped := resolveOptional(t, cfg.GroupColumn)
	if !cfg.GroupColumn.IsZero() && !grouped {
		return nil, emptyf("group column %s not found", cfg.GroupColumn)
	}

	var order []string
	groups := make(map[string][]float64)
	for r := 0; r < t.NumRows(); r++ {
		v, ok := t.At(r, vcol).Number()
		if !ok || !finite(v) {
			continue
		}
		label := t.Columns[vcol]
		if grouped {
			label = t.At(r, gcol).Display()
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], v)
	}
	if len(order) == 0 {
		return nil, emptyf("column %q has no numeric values", t.Columns[vcol])
	}

	b := &BoxPlotModel{Groups: make([]BoxGroup, 0, len(order))}
	for _, label := range order {
		g, err := boxSummary(groups[label])
		if err != nil {
			continue
		}
		g.Label = label
		b.Groups = append(b.Groups, g)
	}
	return b, nil
}

// buildBoxSummary reads one pre-calculated group per row, trusting the
// configured summary columns. Rows missing any of the five numbers are
// skipped.
func buildBoxSummary(t *dataset.Table, cfg boxPlotConfig) (*BoxPlotModel, *EmptyState) {
	lcol, empty := resolveOr(t, cfg.LabelColumn, 0, "label")
	if empty != nil {
		return nil, empty
	}
	refs := []struct {
		what string
		ref  dataset.ColumnRef
	}{
		{"min", cfg.MinColumn},
		{"q1", cfg.Q1Column},
		{"median", cfg.MedianColumn},
		{"q3", cfg.Q3Column},
		{"max", cfg.MaxColumn},
	}
	cols := make([]int, len(refs))
	for i, rc := range refs {
		if rc.ref.IsZero() {
			return nil, emptyf("summary mode requires a %s column", rc.what)
		}
		col, ok := t.Resolve(rc.ref)
		if !ok {
			return nil, emptyf("%s column %s not found", rc.what, rc.ref)
		}
		cols[i] = col
	}

	b := &BoxPlotModel{}
	for r := 0; r < t.NumRows(); r++ {
		var vals [5]float64
		ok := true
		for i, col := range cols {
			v, vok := t.At(r, col).Number()
			if !vok || !finite(v) {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		b.Groups = append(b.Groups, BoxGroup{
			Label:  t.At(r, lcol).Display(),
			Min:    vals[0],
			Q1:     vals[1],
			Median: vals[2],
			Q3:     vals[3],
			Max:    vals[4],
		})
	}
	if len(b.Groups) == 0 {
		return nil, emptyf("no complete summary rows")
	}
	return b, nil
}
