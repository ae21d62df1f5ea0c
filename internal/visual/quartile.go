package visual

import (
	"fmt"
	"sort"
)

// Quantile returns the p-quantile of values (0 <= p <= 1) using the
// linear-interpolation method: the value at fractional rank p*(n-1) on the
// sorted data. At least one value is required.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: quantile of an empty set", ErrInsufficientData)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p), nil
}

// quantileSorted is Quantile over already-sorted data, shared by the box
// plot summary so one sort covers all five cut points.
func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if frac == 0 || lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// boxSummary computes the five-number summary of one group and classifies
// outliers as points beyond 1.5 IQR of the quartiles. Min and Max are the
// group's true extremes, outliers included. The group label is left for
// the caller.
func boxSummary(values []float64) (BoxGroup, error) {
	if len(values) == 0 {
		return BoxGroup{}, fmt.Errorf("%w: box summary of an empty group", ErrInsufficientData)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	g := BoxGroup{
		Min:    sorted[0],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	iqr := g.Q3 - g.Q1
	loFence := g.Q1 - 1.5*iqr
	hiFence := g.Q3 + 1.5*iqr
	for _, v := range sorted {
		if v < loFence || v > hiFence {
			g.Outliers = append(g.Outliers, v)
		}
	}
	return g, nil
}
