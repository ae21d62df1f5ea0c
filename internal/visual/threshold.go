package visual

import "math"

// Threshold comparison modes. A sample passes when it is at or above the
// threshold (above), at or below it (below), or exactly equal (equals).
const (
	ModeAbove  = "above"
	ModeBelow  = "below"
	ModeEquals = "equals"
)

// passes reports whether y is on the passing side of the threshold.
func passes(y, threshold float64, mode string) bool {
	switch mode {
	case ModeBelow:
		return y <= threshold
	case ModeEquals:
		return y == threshold
	default:
		return y >= threshold
	}
}

// Crossings locates every transition between pass and fail along a series
// and computes the color-blend span around each. xs and ys are parallel
// sample coordinates. The crossing position is the linear interpolation of
// the segment at the threshold value; blendPct, a percentage of the full x
// span clamped to [0, 50], widens the transition symmetrically around it.
// Zero blend yields a hard transition with SpanLo == SpanHi == X.
//
// Samples with a non-finite y break continuity: no crossing is reported
// across the gap.
func Crossings(xs, ys []float64, threshold float64, mode string, blendPct float64) []Crossing {
	if len(xs) != len(ys) || len(xs) < 2 {
		return nil
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if x < xMin {
			xMin = x
		}
		if x > xMax {
			xMax = x
		}
	}
	half := math.Min(math.Max(blendPct, 0), 50) / 100 * (xMax - xMin) / 2

	var crossings []Crossing
	prev := -1
	for i := range ys {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			prev = -1
			continue
		}
		if prev < 0 {
			prev = i
			continue
		}
		y0, y1 := ys[prev], ys[i]
		from := passes(y0, threshold, mode)
		if from == passes(y1, threshold, mode) || y1 == y0 {
			prev = i
			continue
		}
		t := (threshold - y0) / (y1 - y0)
		t = math.Min(math.Max(t, 0), 1)
		x := xs[prev] + t*(xs[i]-xs[prev])
		crossings = append(crossings, Crossing{
			X:        x,
			SpanLo:   math.Max(x-half, xMin),
			SpanHi:   math.Min(x+half, xMax),
			FromPass: from,
		})
		prev = i
	}
	return crossings
}
