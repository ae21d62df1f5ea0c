package visual

import (
	"encoding/json"
	"math"

	"github.com/nao1215/chartbook/internal/dataset"
)

type seriesConfig struct {
	XColumn   dataset.ColumnRef   `json:"xColumn"`
	YColumns  []dataset.ColumnRef `json:"yColumns"`
	Threshold *thresholdSpec      `json:"threshold"`
}

type thresholdSpec struct {
	Value      float64 `json:"value"`
	Mode       string  `json:"mode"`
	BlendWidth float64 `json:"blendWidth"`
}

func buildLine(m *Model, raw json.RawMessage, ctx *Context) {
	s, empty := buildSeries(raw, ctx)
	if empty != nil {
		m.Empty = empty
		return
	}
	m.Line = s
}

func buildArea(m *Model, raw json.RawMessage, ctx *Context) {
	s, empty := buildSeries(raw, ctx)
	if empty != nil {
		m.Empty = empty
		return
	}
	m.Area = s
}

// buildSeries derives the shared line/area model. The x axis comes from
// the configured column when its cells are numeric, otherwise from row
// positions, with the column's display text kept as labels. Value columns
// default to every numeric column other than x; absent cells become NaN
// gaps. Threshold crossings are computed against the first series.
func buildSeries(raw json.RawMessage, ctx *Context) (*SeriesModel, *EmptyState) {
	var cfg seriesConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, emptyf("invalid chart configuration: %v", err)
	}
	t, empty := ctx.table()
	if empty != nil {
		return nil, empty
	}

	xcol, hasX := resolveOptional(t, cfg.XColumn)
	if !cfg.XColumn.IsZero() && !hasX {
		return nil, emptyf("x column %s not found", cfg.XColumn)
	}

	skip := -1
	if hasX {
		skip = xcol
	}
	var cols []int
	if len(cfg.YColumns) > 0 {
		for _, ref := range cfg.YColumns {
			col, ok := t.Resolve(ref)
			if !ok {
				return nil, emptyf("value column %s not found", ref)
			}
			cols = append(cols, col)
		}
	} else {
		cols = numericColumns(t, skip)
	}
	if len(cols) == 0 {
		return nil, emptyf("no numeric value columns")
	}

	n := t.NumRows()
	s := &SeriesModel{
		X:       make([]float64, n),
		XLabels: make([]string, n),
		YMin:    math.Inf(1),
		YMax:    math.Inf(-1),
	}
	for r := 0; r < n; r++ {
		s.X[r] = float64(r)
		if !hasX {
			continue
		}
		cell := t.At(r, xcol)
		if v, ok := cell.Number(); ok && finite(v) {
			s.X[r] = v
		}
		s.XLabels[r] = cell.Display()
	}

	valued := false
	for _, col := range cols {
		series := Series{Name: seriesName(t, col), Values: make([]float64, n)}
		for r := 0; r < n; r++ {
			v, ok := t.At(r, col).Number()
			if !ok || !finite(v) {
				series.Values[r] = math.NaN()
				continue
			}
			series.Values[r] = v
			s.YMin = math.Min(s.YMin, v)
			s.YMax = math.Max(s.YMax, v)
			valued = true
		}
		s.Series = append(s.Series, series)
	}
	if !valued {
		return nil, emptyf("no numeric values to chart")
	}

	if cfg.Threshold != nil {
		mode := cfg.Threshold.Mode
		if mode == "" {
			mode = ModeAbove
		}
		s.Threshold = &ThresholdModel{
			Value: cfg.Threshold.Value,
			Mode:  mode,
			Crossings: Crossings(s.X, s.Series[0].Values,
				cfg.Threshold.Value, mode, cfg.Threshold.BlendWidth),
		}
	}
	return s, nil
}
