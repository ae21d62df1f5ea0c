package visual

import (
	"encoding/json"
	"math"

	"github.com/nao1215/chartbook/internal/dataset"
)

type scatterConfig struct {
	XColumn dataset.ColumnRef `json:"xColumn"`
	YColumn dataset.ColumnRef `json:"yColumn"`

	// Regression toggles the fitted line; nil defaults to on.
	Regression *bool `json:"regression"`
}

// buildScatter pairs two numeric columns. Rows where either coordinate is
// absent or non-finite are dropped, so the fit sees only valid samples.
func buildScatter(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg scatterConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid scatter configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}
	xcol, empty := resolveOr(t, cfg.XColumn, 0, "x")
	if empty != nil {
		m.Empty = empty
		return
	}
	ycol, empty := resolveOr(t, cfg.YColumn, 1, "y")
	if empty != nil {
		m.Empty = empty
		return
	}

	s := &ScatterModel{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for r := 0; r < t.NumRows(); r++ {
		x, xok := t.At(r, xcol).Number()
		y, yok := t.At(r, ycol).Number()
		if !xok || !yok || !finite(x) || !finite(y) {
			continue
		}
		s.Points = append(s.Points, Point{X: x, Y: y})
		s.XMin = math.Min(s.XMin, x)
		s.XMax = math.Max(s.XMax, x)
		s.YMin = math.Min(s.YMin, y)
		s.YMax = math.Max(s.YMax, y)
	}
	if len(s.Points) == 0 {
		m.Empty = emptyf("no paired numeric values in columns %q and %q", t.Columns[xcol], t.Columns[ycol])
		return
	}

	// A failed fit leaves Regression nil; the points still render.
	if cfg.Regression == nil || *cfg.Regression {
		if fit, err := FitLine(s.Points); err == nil {
			s.Regression = &fit
		}
	}
	m.Scatter = s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
