package visual

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/chartbook/internal/dataset"
)

// defaultBinCount is used when a histogram does not configure bins.
const defaultBinCount = 10

// BinValues distributes values into binCount equal-width intervals
// spanning [min, max] of the data. binCount <= 0 selects the default of
// 10. When all values are equal the result is a single degenerate bin.
// Intervals are half-open [Lo, Hi) except the rightmost, which includes
// the maximum value.
func BinValues(values []float64, binCount int) ([]Bin, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: histogram of an empty column", ErrInsufficientData)
	}
	if binCount <= 0 {
		binCount = defaultBinCount
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(values)}}, nil
	}

	bins := make([]Bin, binCount)
	width := (hi - lo) / float64(binCount)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	// Pin the rightmost edge to the true maximum so it is not lost to
	// floating-point drift in the width multiplication.
	bins[binCount-1].Hi = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}
	return bins, nil
}

type histogramConfig struct {
	ValueColumn dataset.ColumnRef `json:"valueColumn"`
	Bins        int               `json:"bins"`
}

func buildHistogram(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg histogramConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid histogram configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}
	col, empty := resolveOr(t, cfg.ValueColumn, 0, "value")
	if empty != nil {
		m.Empty = empty
		return
	}

	values := t.Numbers(col)
	bins, err := BinValues(values, cfg.Bins)
	if err != nil {
		m.Empty = emptyf("column %q has no numeric values", t.Columns[col])
		return
	}

	h := &HistogramModel{Bins: bins, Min: bins[0].Lo, Max: bins[len(bins)-1].Hi}
	for _, b := range bins {
		if b.Count > h.MaxCount {
			h.MaxCount = b.Count
		}
	}
	m.Histogram = h
}
