package visual

import (
	"encoding/json"
	"math"

	"github.com/nao1215/chartbook/internal/dataset"
)

type pieConfig struct {
	LabelColumn dataset.ColumnRef `json:"labelColumn"`
	ValueColumn dataset.ColumnRef `json:"valueColumn"`
}

// buildPie derives one slice per row. Only finite positive values carry a
// share of the pie; rows with absent, non-numeric, or non-positive values
// are skipped.
func buildPie(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg pieConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid pie configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}
	lcol, empty := resolveOr(t, cfg.LabelColumn, 0, "label")
	if empty != nil {
		m.Empty = empty
		return
	}
	vcol, empty := resolveOr(t, cfg.ValueColumn, 1, "value")
	if empty != nil {
		m.Empty = empty
		return
	}

	p := &PieModel{}
	for r := 0; r < t.NumRows(); r++ {
		v, ok := t.At(r, vcol).Number()
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		p.Slices = append(p.Slices, Slice{Label: t.At(r, lcol).Display(), Value: v})
		p.Total += v
	}
	if len(p.Slices) == 0 {
		m.Empty = emptyf("column %q has no positive values", t.Columns[vcol])
		return
	}
	for i := range p.Slices {
		p.Slices[i].Fraction = p.Slices[i].Value / p.Total
	}
	m.Pie = p
}
