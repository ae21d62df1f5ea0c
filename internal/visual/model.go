package visual

import (
	"encoding/json"
	"math"
	"time"
)

// Classification is the breach/warning indicator derived for a value.
type Classification string

// Classification states. ClassNone means no indicator: the value is
// missing or no thresholds are configured.
const (
	ClassNone    Classification = ""
	ClassOK      Classification = "ok"
	ClassWarning Classification = "warning"
	ClassBreach  Classification = "breach"
)

// ItemStatus is the due-date status derived for a checklist item.
type ItemStatus string

// Checklist item statuses.
const (
	StatusComplete ItemStatus = "complete"
	StatusOverdue  ItemStatus = "overdue"
	StatusWarning  ItemStatus = "warning"
	StatusPending  ItemStatus = "pending"
)

// Model is the derived render model for one visual: resolved strings and
// pre-computed statistics, handed to the presentation layer. Exactly one
// family payload pointer is set, or Empty when the visual cannot render.
type Model struct {
	// Type is the visual family tag from the document.
	Type string `json:"type"`

	// Title is the rendered title text, empty when the visual has none.
	Title string `json:"title,omitempty"`

	// Empty is set when the visual renders an explicit empty state instead
	// of its family payload.
	Empty *EmptyState `json:"empty,omitempty"`

	// Common carries the shared presentation fields (padding, margin,
	// border, shadow, flex) untouched.
	Common map[string]any `json:"common,omitempty"`

	Card         *CardModel      `json:"card,omitempty"`
	KPI          *KPIModel       `json:"kpi,omitempty"`
	Gauge        *GaugeModel     `json:"gauge,omitempty"`
	Pie          *PieModel       `json:"pie,omitempty"`
	StackedBar   *BarModel       `json:"stackedBar,omitempty"`
	ClusteredBar *BarModel       `json:"clusteredBar,omitempty"`
	Scatter      *ScatterModel   `json:"scatter,omitempty"`
	Table        *TableModel     `json:"table,omitempty"`
	Checklist    *ChecklistModel `json:"checklist,omitempty"`
	Line         *SeriesModel    `json:"line,omitempty"`
	Area         *SeriesModel    `json:"area,omitempty"`
	Histogram    *HistogramModel `json:"histogram,omitempty"`
	BoxPlot      *BoxPlotModel   `json:"boxPlot,omitempty"`
}

// EmptyState explains why a visual has no payload: a dangling dataset
// reference, an unresolved required column, or insufficient data.
type EmptyState struct {
	Reason string `json:"reason"`
}

// CardModel is a block of template-rendered text.
type CardModel struct {
	Body string `json:"body"`
}

// KPIModel is a single headline value with optional delta and indicator.
type KPIModel struct {
	Value          float64        `json:"value"`
	HasValue       bool           `json:"hasValue"`
	Display        string         `json:"display"`
	Delta          *float64       `json:"delta,omitempty"`
	Classification Classification `json:"classification,omitempty"`
}

// GaugeModel is a value positioned on a fixed [Min, Max] range.
// Fraction is the value's position on that range, clamped to [0, 1].
type GaugeModel struct {
	Value          float64        `json:"value"`
	Min            float64        `json:"min"`
	Max            float64        `json:"max"`
	HasValue       bool           `json:"hasValue"`
	Fraction       float64        `json:"fraction"`
	Display        string         `json:"display"`
	Classification Classification `json:"classification,omitempty"`
}

// Slice is one pie segment. Fraction is Value divided by the pie total.
type Slice struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Fraction float64 `json:"fraction"`
}

// PieModel is a set of labeled positive values summing to Total.
type PieModel struct {
	Slices []Slice `json:"slices"`
	Total  float64 `json:"total"`
}

// Series is one named sequence of values, parallel to the chart's
// category or x axis. Absent cells appear as NaN; see MarshalJSON.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// MarshalJSON encodes non-finite values as null, since JSON has no NaN.
func (s Series) MarshalJSON() ([]byte, error) {
	vals := make([]any, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue // leave nil
		}
		vals[i] = v
	}
	return json.Marshal(struct {
		Name   string `json:"name"`
		Values []any  `json:"values"`
	}{s.Name, vals})
}

// BarModel is a category axis with one or more value series. Max is the
// largest single value; StackMax is the largest per-category sum. Stacked
// bars scale against StackMax, clustered bars against Max.
type BarModel struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
	Max        float64  `json:"max"`
	StackMax   float64  `json:"stackMax"`
}

// Point is one scatter sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Regression holds least-squares fit coefficients and the Pearson
// correlation for a set of points.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	R2        float64 `json:"r2"`
}

// ScatterModel is a set of paired points with an optional fitted line.
// Regression is nil when disabled or when fewer than two valid points
// exist.
type ScatterModel struct {
	Points     []Point     `json:"points"`
	Regression *Regression `json:"regression,omitempty"`
	XMin       float64     `json:"xMin"`
	XMax       float64     `json:"xMax"`
	YMin       float64     `json:"yMin"`
	YMax       float64     `json:"yMax"`
}

// TableModel is a formatted grid: cells stringified per column dtype,
// alignment derived from the dtype (numbers right, everything else left).
type TableModel struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Aligns  []string   `json:"aligns"`
}

// ChecklistItem is one checklist row with its derived due-date status.
// DaysUntilDue is nil when the row has no due date; negative once the due
// date is a full day past.
type ChecklistItem struct {
	Label        string     `json:"label"`
	Status       ItemStatus `json:"status"`
	Due          *time.Time `json:"due,omitempty"`
	DaysUntilDue *int       `json:"daysUntilDue,omitempty"`
}

// ChecklistModel is an ordered list of classified items.
type ChecklistModel struct {
	Items []ChecklistItem `json:"items"`
}

// Crossing is one point where a charted series transitions between pass
// and fail relative to a threshold. X is the parametric crossing position;
// SpanLo/SpanHi bound the color-blend interval around it (equal to X for a
// hard transition). FromPass records the state before the crossing.
type Crossing struct {
	X        float64 `json:"x"`
	SpanLo   float64 `json:"spanLo"`
	SpanHi   float64 `json:"spanHi"`
	FromPass bool    `json:"fromPass"`
}

// ThresholdModel is a horizontal reference value with its pass/fail mode
// and the computed crossings of the chart's primary series.
type ThresholdModel struct {
	Value     float64    `json:"value"`
	Mode      string     `json:"mode"`
	Crossings []Crossing `json:"crossings"`
}

// SeriesModel is a line or area chart: a shared x axis with one or more
// value series. X holds numeric positions; XLabels the display text per
// position.
type SeriesModel struct {
	X         []float64       `json:"x"`
	XLabels   []string        `json:"xLabels"`
	Series    []Series        `json:"series"`
	YMin      float64         `json:"yMin"`
	YMax      float64         `json:"yMax"`
	Threshold *ThresholdModel `json:"threshold,omitempty"`
}

// Bin is one histogram interval. Intervals are half-open [Lo, Hi) except
// the rightmost, which includes its upper bound.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// HistogramModel is an equal-width binning of one numeric column.
type HistogramModel struct {
	Bins     []Bin   `json:"bins"`
	MaxCount int     `json:"maxCount"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// BoxGroup is the five-number summary of one group plus its outliers.
// Min and Max are the group's extreme values; Outliers lists the points
// beyond 1.5 IQR of the quartiles.
type BoxGroup struct {
	Label    string    `json:"label"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers"`
}

// BoxPlotModel is one or more box-and-whisker groups.
type BoxPlotModel struct {
	Groups []BoxGroup `json:"groups"`
}
