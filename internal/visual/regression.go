package visual

import (
	"fmt"
	"math"
)

// FitLine computes the least-squares regression line and Pearson
// correlation for the points. It requires at least two points with
// distinct x values; anything less reports ErrInsufficientData so callers
// present the fit as unavailable rather than drawing a degenerate line.
func FitLine(points []Point) (Regression, error) {
	n := float64(len(points))
	if len(points) < 2 {
		return Regression{}, fmt.Errorf("%w: regression needs at least 2 points, got %d", ErrInsufficientData, len(points))
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, syy, sxy float64
	for _, p := range points {
		dx, dy := p.X-meanX, p.Y-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 {
		return Regression{}, fmt.Errorf("%w: regression needs distinct x values", ErrInsufficientData)
	}

	r := Regression{Slope: sxy / sxx}
	r.Intercept = meanY - r.Slope*meanX
	if syy > 0 {
		r.R = sxy / math.Sqrt(sxx*syy)
		r.R2 = r.R * r.R
	}
	return r, nil
}
