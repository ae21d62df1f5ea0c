package visual

import (
	"encoding/json"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
)

// Aggregate names accepted by value-bearing visuals.
const (
	AggregateSum   = "sum"
	AggregateAvg   = "avg"
	AggregateMin   = "min"
	AggregateMax   = "max"
	AggregateCount = "count"
)

func knownAggregate(name string) bool {
	switch name {
	case "", AggregateSum, AggregateAvg, AggregateMin, AggregateMax, AggregateCount:
		return true
	}
	return false
}

// aggregateColumn applies the named aggregate to a resolved column.
// An empty name means sum. ok=false reports no eligible values.
func aggregateColumn(t *dataset.Table, col int, name string) (float64, bool) {
	switch name {
	case "", AggregateSum:
		return t.Sum(col)
	case AggregateAvg:
		return t.Avg(col)
	case AggregateMin:
		return t.Min(col)
	case AggregateMax:
		return t.Max(col)
	case AggregateCount:
		return float64(t.Count()), true
	}
	return 0, false
}

// headlineValue computes a visual's single value: the configured aggregate
// over the value column, defaulting to the sum of column 0. Count needs no
// column at all. ok=false means the aggregate had no eligible values, which
// is a displayable no-data state, not an empty state.
func headlineValue(t *dataset.Table, ref dataset.ColumnRef, agg string) (float64, bool, *EmptyState) {
	if !knownAggregate(agg) {
		return 0, false, emptyf("unknown aggregate %q", agg)
	}
	if agg == AggregateCount {
		return float64(t.Count()), true, nil
	}
	col, empty := resolveOr(t, ref, 0, "value")
	if empty != nil {
		return 0, false, empty
	}
	v, ok := aggregateColumn(t, col, agg)
	return v, ok, nil
}

// displayConfig controls how a headline value is stringified.
type displayConfig struct {
	// Format selects the formatter: number (default), percent, or currency.
	Format string `json:"format"`

	// Digits fixes the fraction digits; nil lets the formatter choose.
	Digits *int `json:"digits"`

	// Currency is the symbol for the currency format, defaulting to "$".
	Currency string `json:"currency"`
}

func (d displayConfig) display(v float64) string {
	digits := -1
	if d.Digits != nil {
		digits = *d.Digits
	}
	switch d.Format {
	case "percent":
		return format.Percent(v, digits)
	case "currency":
		return format.Currency(v, d.Currency, digits)
	default:
		return format.Number(v, digits)
	}
}

// thresholdConfig is the document form of breach/warning classification.
type thresholdConfig struct {
	GoodDirection string   `json:"goodDirection"`
	BreachValue   *float64 `json:"breachValue"`
	WarningValue  *float64 `json:"warningValue"`
}

func (c thresholdConfig) thresholds() Thresholds {
	return Thresholds{
		Breach:        c.BreachValue,
		Warning:       c.WarningValue,
		GoodDirection: c.GoodDirection,
	}
}

type kpiConfig struct {
	ValueColumn dataset.ColumnRef `json:"valueColumn"`
	Aggregate   string            `json:"aggregate"`
	DeltaColumn dataset.ColumnRef `json:"deltaColumn"`
	displayConfig
	thresholdConfig
}

// buildKPI derives a single headline value. A dataset with no eligible
// values still renders, showing the no-data placeholder without an
// indicator.
func buildKPI(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg kpiConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid kpi configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}

	v, ok, empty := headlineValue(t, cfg.ValueColumn, cfg.Aggregate)
	if empty != nil {
		m.Empty = empty
		return
	}

	k := &KPIModel{HasValue: ok, Display: format.NoData}
	if ok {
		k.Value = v
		k.Display = cfg.display(v)
		k.Classification = Classify(v, cfg.thresholds())
	}
	if dcol, found := resolveOptional(t, cfg.DeltaColumn); found {
		if d, dok := aggregateColumn(t, dcol, cfg.Aggregate); dok {
			k.Delta = &d
		}
	}
	m.KPI = k
}
