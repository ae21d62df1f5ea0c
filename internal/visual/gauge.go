package visual

import (
	"encoding/json"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
)

type gaugeConfig struct {
	ValueColumn dataset.ColumnRef `json:"valueColumn"`
	Aggregate   string            `json:"aggregate"`
	Min         *float64          `json:"min"`
	Max         *float64          `json:"max"`
	displayConfig
	thresholdConfig
}

// buildGauge positions a headline value on a fixed range, defaulting to
// [0, 100]. The fraction is clamped so out-of-range values pin to an end
// of the gauge instead of escaping it.
func buildGauge(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg gaugeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid gauge configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}

	g := &GaugeModel{Min: 0, Max: 100, Display: format.NoData}
	if cfg.Min != nil {
		g.Min = *cfg.Min
	}
	if cfg.Max != nil {
		g.Max = *cfg.Max
	}

	v, ok, empty := headlineValue(t, cfg.ValueColumn, cfg.Aggregate)
	if empty != nil {
		m.Empty = empty
		return
	}
	if ok {
		g.Value = v
		g.HasValue = true
		g.Display = cfg.display(v)
		g.Classification = Classify(v, cfg.thresholds())
		if span := g.Max - g.Min; span > 0 {
			f := (v - g.Min) / span
			switch {
			case f < 0:
				f = 0
			case f > 1:
				f = 1
			}
			g.Fraction = f
		}
	}
	m.Gauge = g
}
