package visual

import (
	"encoding/json"
	"math"

	"github.com/nao1215/chartbook/internal/dataset"
)

type barConfig struct {
	CategoryColumn dataset.ColumnRef   `json:"categoryColumn"`
	ValueColumns   []dataset.ColumnRef `json:"valueColumns"`
}

func buildStackedBar(m *Model, raw json.RawMessage, ctx *Context) {
	b, empty := buildBars(raw, ctx)
	if empty != nil {
		m.Empty = empty
		return
	}
	m.StackedBar = b
}

func buildClusteredBar(m *Model, raw json.RawMessage, ctx *Context) {
	b, empty := buildBars(raw, ctx)
	if empty != nil {
		m.Empty = empty
		return
	}
	m.ClusteredBar = b
}

// buildBars derives the shared category/series model. Value columns
// default to every numeric column other than the category; absent cells
// become NaN so the writer can tell a missing bar from a zero one.
func buildBars(raw json.RawMessage, ctx *Context) (*BarModel, *EmptyState) {
	var cfg barConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, emptyf("invalid bar configuration: %v", err)
	}
	t, empty := ctx.table()
	if empty != nil {
		return nil, empty
	}
	cat, empty := resolveOr(t, cfg.CategoryColumn, 0, "category")
	if empty != nil {
		return nil, empty
	}

	var cols []int
	if len(cfg.ValueColumns) > 0 {
		for _, ref := range cfg.ValueColumns {
			col, ok := t.Resolve(ref)
			if !ok {
				return nil, emptyf("value column %s not found", ref)
			}
			cols = append(cols, col)
		}
	} else {
		cols = numericColumns(t, cat)
	}
	if len(cols) == 0 {
		return nil, emptyf("no numeric value columns")
	}

	b := &BarModel{Categories: make([]string, t.NumRows())}
	for r := range b.Categories {
		b.Categories[r] = t.At(r, cat).Display()
	}
	for _, col := range cols {
		s := Series{Name: seriesName(t, col), Values: make([]float64, t.NumRows())}
		for r := range s.Values {
			if v, ok := t.At(r, col).Number(); ok {
				s.Values[r] = v
			} else {
				s.Values[r] = math.NaN()
			}
		}
		b.Series = append(b.Series, s)
	}

	for r := 0; r < t.NumRows(); r++ {
		stack := 0.0
		for _, s := range b.Series {
			v := s.Values[r]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v > b.Max {
				b.Max = v
			}
			stack += v
		}
		if stack > b.StackMax {
			b.StackMax = stack
		}
	}
	return b, nil
}
