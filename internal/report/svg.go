package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/visual"
)

// chartConfig fixes the pixel geometry of a rendered chart. The derived
// models carry data values only; every scale-to-pixels decision lives
// here in the writer.
type chartConfig struct {
	width        int
	height       int
	marginTop    int
	marginRight  int
	marginBottom int
	marginLeft   int
}

// defaultChart is the shared geometry for axis-based charts.
var defaultChart = chartConfig{
	width:        640,
	height:       300,
	marginTop:    20,
	marginRight:  20,
	marginBottom: 40,
	marginLeft:   64,
}

// plotArea returns the drawing region inside the margins.
func (c chartConfig) plotArea() (x, y, w, h int) {
	return c.marginLeft, c.marginTop,
		c.width - c.marginLeft - c.marginRight,
		c.height - c.marginTop - c.marginBottom
}

// seriesPalette cycles across chart series in declaration order.
var seriesPalette = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}

func seriesColor(i int) string {
	return seriesPalette[i%len(seriesPalette)]
}

// classificationColor maps a threshold classification to its accent
// color. The neutral gray covers missing values and unset thresholds.
func classificationColor(c visual.Classification) string {
	switch c {
	case visual.ClassBreach:
		return "#ef5350"
	case visual.ClassWarning:
		return "#ff9800"
	case visual.ClassOK:
		return "#4caf50"
	default:
		return "#546e7a"
	}
}

func esc(s string) string {
	return html.EscapeString(s)
}

func svgOpen(b *strings.Builder, cfg chartConfig) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="system-ui, sans-serif" role="img">`,
		cfg.width, cfg.height, cfg.width, cfg.height)
}

// padRange widens a value range by five percent so strokes at the
// extremes stay inside the plot. A collapsed range widens to a unit
// span around the value.
func padRange(lo, hi float64) (float64, float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	if span < 1e-9 {
		return lo - 0.5, hi + 0.5
	}
	return lo - span*0.05, hi + span*0.05
}

// yGrid draws horizontal grid lines with value labels across the padded
// [lo, hi] range and returns the value-to-pixel mapper for that range.
func yGrid(b *strings.Builder, cfg chartConfig, lo, hi float64) func(float64) float64 {
	px, py, pw, ph := cfg.plotArea()
	lo, hi = padRange(lo, hi)
	span := hi - lo

	const lines = 5
	for i := 0; i <= lines; i++ {
		val := lo + span*float64(i)/lines
		y := float64(py+ph) - float64(ph)*float64(i)/lines
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e8e8e8" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="11" fill="#667" text-anchor="end">%s</text>`,
			px-6, y+4, esc(format.Number(val, -1)))
	}

	return func(v float64) float64 {
		return float64(py+ph) - (v-lo)/span*float64(ph)
	}
}

func xTickLabel(b *strings.Builder, x float64, y int, label string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="10" fill="#667" text-anchor="middle">%s</text>`,
		x, y, esc(label))
}

// labelStep thins a category axis so at most eight labels render.
func labelStep(n int) int {
	step := n / 8
	if step < 1 {
		step = 1
	}
	return step
}

// svgSeriesChart renders a line or area chart. Non-finite values break
// the path into separate runs so gaps in the data stay visible instead
// of being bridged by a stroke.
func svgSeriesChart(m *visual.SeriesModel, area bool) string {
	cfg := defaultChart
	px, py, pw, ph := cfg.plotArea()

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.X) == 0 || len(m.Series) == 0 {
		return b.String() + "</svg>"
	}

	toY := yGrid(&b, cfg, m.YMin, m.YMax)

	xLo, xHi := math.Inf(1), math.Inf(-1)
	for _, x := range m.X {
		xLo = math.Min(xLo, x)
		xHi = math.Max(xHi, x)
	}
	if xHi-xLo < 1e-9 {
		xLo, xHi = xLo-0.5, xHi+0.5
	}
	toX := func(x float64) float64 {
		return float64(px) + (x-xLo)/(xHi-xLo)*float64(pw)
	}

	// Threshold decoration first so series strokes draw over it.
	if t := m.Threshold; t != nil {
		for _, c := range t.Crossings {
			x0, x1 := toX(c.SpanLo), toX(c.SpanHi)
			if x1 > x0 {
				fmt.Fprintf(&b, `<rect x="%.1f" y="%d" width="%.1f" height="%d" fill="#ff9800" opacity="0.15"/>`,
					x0, py, x1-x0, ph)
			}
		}
		ty := toY(t.Value)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ef5350" stroke-width="1.5" stroke-dasharray="6,4"/>`,
			px, ty, px+pw, ty)
	}

	type pt struct{ x, y float64 }
	for si, s := range m.Series {
		color := seriesColor(si)

		var runs [][]pt
		var run []pt
		for i, v := range s.Values {
			if i >= len(m.X) {
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if len(run) > 0 {
					runs = append(runs, run)
					run = nil
				}
				continue
			}
			run = append(run, pt{toX(m.X[i]), toY(v)})
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}

		for _, run := range runs {
			if area && len(run) > 1 {
				var fill strings.Builder
				fmt.Fprintf(&fill, "M%.1f,%d", run[0].x, py+ph)
				for _, p := range run {
					fmt.Fprintf(&fill, " L%.1f,%.1f", p.x, p.y)
				}
				fmt.Fprintf(&fill, " L%.1f,%d Z", run[len(run)-1].x, py+ph)
				fmt.Fprintf(&b, `<path d="%s" fill="%s" opacity="0.15"/>`, fill.String(), color)
			}
			if len(run) == 1 {
				// An isolated sample has no stroke to carry it.
				fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="2.5" fill="%s"/>`, run[0].x, run[0].y, color)
				continue
			}
			var path strings.Builder
			for i, p := range run {
				cmd := "L"
				if i == 0 {
					cmd = "M"
				}
				if i > 0 {
					path.WriteByte(' ')
				}
				fmt.Fprintf(&path, "%s%.1f,%.1f", cmd, p.x, p.y)
			}
			fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`, path.String(), color)
		}

		if len(m.Series) > 1 {
			ly := py + 12 + si*16
			fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
				px+8, ly, px+26, ly, color)
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#334">%s</text>`,
				px+31, ly+4, esc(s.Name))
		}
	}

	step := labelStep(len(m.X))
	for i := 0; i < len(m.X); i += step {
		label := ""
		if i < len(m.XLabels) {
			label = m.XLabels[i]
		}
		if label == "" {
			label = format.Number(m.X[i], -1)
		}
		xTickLabel(&b, toX(m.X[i]), py+ph+16, label)
	}

	return b.String() + "</svg>"
}

// svgBarChart renders vertical bars. Stacked mode piles the series per
// category and scales against the tallest stack; clustered mode places
// them side by side and scales against the largest single value. Only
// positive finite values draw.
func svgBarChart(m *visual.BarModel, stacked bool) string {
	cfg := defaultChart
	px, py, pw, ph := cfg.plotArea()

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.Categories) == 0 || len(m.Series) == 0 {
		return b.String() + "</svg>"
	}

	top := m.Max
	if stacked {
		top = m.StackMax
	}
	toY := yGrid(&b, cfg, 0, top)
	baseY := toY(0)

	n := len(m.Categories)
	slot := float64(pw) / float64(n)
	step := labelStep(n)

	for ci, cat := range m.Categories {
		x0 := float64(px) + float64(ci)*slot

		if stacked {
			barW := slot * 0.6
			bx := x0 + (slot-barW)/2
			cum := 0.0
			for si, s := range m.Series {
				if ci >= len(s.Values) {
					continue
				}
				v := s.Values[ci]
				if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
					continue
				}
				y1 := toY(cum + v)
				y0 := toY(cum)
				fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
					bx, y1, barW, y0-y1, seriesColor(si))
				cum += v
			}
		} else {
			group := slot * 0.8
			barW := group / float64(len(m.Series))
			for si, s := range m.Series {
				if ci >= len(s.Values) {
					continue
				}
				v := s.Values[ci]
				if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
					continue
				}
				bx := x0 + (slot-group)/2 + float64(si)*barW
				y := toY(v)
				fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
					bx, y, barW*0.9, baseY-y, seriesColor(si))
			}
		}

		if ci%step == 0 {
			xTickLabel(&b, x0+slot/2, py+ph+16, cat)
		}
	}

	if len(m.Series) > 1 {
		for si, s := range m.Series {
			ly := py + 12 + si*16
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`,
				px+8, ly-8, seriesColor(si))
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#334">%s</text>`,
				px+22, ly, esc(s.Name))
		}
	}

	return b.String() + "</svg>"
}

// svgPieChart renders slices clockwise from twelve o'clock with a
// legend carrying each slice's share. A slice covering effectively the
// whole pie draws as a circle, since a 360 degree arc collapses to a
// zero-length path.
func svgPieChart(m *visual.PieModel) string {
	cfg := chartConfig{width: 640, height: 300}
	const (
		cx = 170.0
		cy = 150.0
		r  = 110.0
	)

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.Slices) == 0 {
		return b.String() + "</svg>"
	}

	cum := 0.0
	for i, s := range m.Slices {
		color := seriesColor(i)
		if s.Fraction >= 0.999 {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`, cx, cy, r, color)
			cum += s.Fraction
			continue
		}
		if s.Fraction <= 0 {
			continue
		}
		a0 := 2*math.Pi*cum - math.Pi/2
		a1 := 2*math.Pi*(cum+s.Fraction) - math.Pi/2
		x0, y0 := cx+r*math.Cos(a0), cy+r*math.Sin(a0)
		x1, y1 := cx+r*math.Cos(a1), cy+r*math.Sin(a1)
		large := 0
		if s.Fraction > 0.5 {
			large = 1
		}
		fmt.Fprintf(&b, `<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f Z" fill="%s" stroke="#fff" stroke-width="1"/>`,
			cx, cy, x0, y0, r, r, large, x1, y1, color)
		cum += s.Fraction
	}

	// Legend column beside the pie.
	const maxLegend = 12
	for i, s := range m.Slices {
		if i == maxLegend {
			fmt.Fprintf(&b, `<text x="320" y="%d" font-size="11" fill="#667">+%d more</text>`,
				44+i*18, len(m.Slices)-maxLegend)
			break
		}
		ly := 40 + i*18
		fmt.Fprintf(&b, `<rect x="320" y="%d" width="10" height="10" fill="%s"/>`, ly-9, seriesColor(i))
		fmt.Fprintf(&b, `<text x="336" y="%d" font-size="11" fill="#334">%s %s (%s)</text>`,
			ly, esc(s.Label), esc(format.Percent(s.Fraction, -1)), esc(format.Number(s.Value, -1)))
	}

	return b.String() + "</svg>"
}

// svgScatterChart renders paired points with the fitted regression
// segment drawn across the observed x extent.
func svgScatterChart(m *visual.ScatterModel) string {
	cfg := defaultChart
	px, py, pw, ph := cfg.plotArea()

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.Points) == 0 {
		return b.String() + "</svg>"
	}

	toY := yGrid(&b, cfg, m.YMin, m.YMax)
	xLo, xHi := padRange(m.XMin, m.XMax)
	toX := func(x float64) float64 {
		return float64(px) + (x-xLo)/(xHi-xLo)*float64(pw)
	}

	if reg := m.Regression; reg != nil {
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ef5350" stroke-width="1.5" stroke-dasharray="5,3"/>`,
			toX(m.XMin), toY(reg.Intercept+reg.Slope*m.XMin),
			toX(m.XMax), toY(reg.Intercept+reg.Slope*m.XMax))
	}

	for _, p := range m.Points {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="#2196f3" fill-opacity="0.7"/>`,
			toX(p.X), toY(p.Y))
	}

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		val := m.XMin + (m.XMax-m.XMin)*float64(i)/ticks
		xTickLabel(&b, toX(val), py+ph+16, format.Number(val, -1))
	}

	if reg := m.Regression; reg != nil {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#667" text-anchor="end">r&#178; = %s</text>`,
			px+pw, py+12, esc(format.Number(reg.R2, 3)))
	}

	return b.String() + "</svg>"
}

// svgHistogram renders equal-width bins as contiguous bars. A
// degenerate bin with zero width still draws a sliver so single-value
// distributions stay visible.
func svgHistogram(m *visual.HistogramModel) string {
	cfg := defaultChart
	px, py, pw, ph := cfg.plotArea()

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.Bins) == 0 {
		return b.String() + "</svg>"
	}

	toY := yGrid(&b, cfg, 0, float64(m.MaxCount))
	baseY := toY(0)

	lo, hi := m.Min, m.Max
	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}
	toX := func(x float64) float64 {
		return float64(px) + (x-lo)/(hi-lo)*float64(pw)
	}

	for _, bin := range m.Bins {
		if bin.Count == 0 {
			continue
		}
		x0, x1 := toX(bin.Lo), toX(bin.Hi)
		w := x1 - x0
		if w < 2 {
			w = 2
		}
		y := toY(float64(bin.Count))
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#2196f3" stroke="#fff" stroke-width="0.5"/>`,
			x0, y, w, baseY-y)
	}

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		val := m.Min + (m.Max-m.Min)*float64(i)/ticks
		xTickLabel(&b, toX(val), py+ph+16, format.Number(val, -1))
	}

	return b.String() + "</svg>"
}

// svgBoxPlot renders one whisker-and-box column per group, outliers as
// open circles beyond the whiskers.
func svgBoxPlot(m *visual.BoxPlotModel) string {
	cfg := defaultChart
	px, py, pw, ph := cfg.plotArea()

	var b strings.Builder
	svgOpen(&b, cfg)

	if len(m.Groups) == 0 {
		return b.String() + "</svg>"
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range m.Groups {
		lo = math.Min(lo, g.Min)
		hi = math.Max(hi, g.Max)
		for _, o := range g.Outliers {
			lo = math.Min(lo, o)
			hi = math.Max(hi, o)
		}
	}
	toY := yGrid(&b, cfg, lo, hi)

	n := len(m.Groups)
	slot := float64(pw) / float64(n)
	step := labelStep(n)

	for i, g := range m.Groups {
		cx := float64(px) + slot*float64(i) + slot/2
		boxW := math.Min(slot*0.5, 60)
		capW := boxW * 0.6
		color := seriesColor(i)

		yMin, yMax := toY(g.Min), toY(g.Max)
		yQ1, yQ3 := toY(g.Q1), toY(g.Q3)
		yMed := toY(g.Median)

		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#667" stroke-width="1"/>`,
			cx, yMax, cx, yMin)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#667" stroke-width="1"/>`,
			cx-capW/2, yMax, cx+capW/2, yMax)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#667" stroke-width="1"/>`,
			cx-capW/2, yMin, cx+capW/2, yMin)
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.35" stroke="%s"/>`,
			cx-boxW/2, yQ3, boxW, yQ1-yQ3, color, color)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
			cx-boxW/2, yMed, cx+boxW/2, yMed, color)

		for _, o := range g.Outliers {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="2.5" fill="none" stroke="#667"/>`,
				cx, toY(o))
		}

		if i%step == 0 {
			xTickLabel(&b, cx, py+ph+16, g.Label)
		}
	}

	return b.String() + "</svg>"
}

// svgGauge renders a semicircular dial: a gray track, a value arc up to
// the clamped fraction, a needle and the formatted reading beneath the
// hub. A missing value parks the needle at the left stop in neutral
// gray.
func svgGauge(m *visual.GaugeModel) string {
	const (
		width  = 240
		height = 158
		cx     = 120.0
		cy     = 120.0
		r      = 96.0
	)

	frac := m.Fraction
	color := classificationColor(m.Classification)
	if !m.HasValue {
		frac = 0
		color = "#b0bec5"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="system-ui, sans-serif" role="img">`,
		width, height, width, height)

	// Track from the left stop to the right stop.
	fmt.Fprintf(&b, `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#eceff1" stroke-width="14" stroke-linecap="round"/>`,
		cx-r, cy, r, r, cx+r, cy)

	angle := math.Pi - frac*math.Pi
	ex := cx + r*math.Cos(angle)
	ey := cy - r*math.Sin(angle)

	if frac > 0.004 {
		large := 0
		if frac > 0.5 {
			large = 1
		}
		fmt.Fprintf(&b, `<path d="M%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="14" stroke-linecap="round"/>`,
			cx-r, cy, r, r, large, ex, ey, color)
	}

	nx := cx + (r-22)*math.Cos(angle)
	ny := cy - (r-22)*math.Sin(angle)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#37474f" stroke-width="2.5"/>`,
		cx, cy, nx, ny)
	fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="5" fill="#37474f"/>`, cx, cy)

	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="18" font-weight="bold" fill="#263238" text-anchor="middle">%s</text>`,
		cx, cy+28, esc(m.Display))
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" fill="#667" text-anchor="middle">%s</text>`,
		cx-r, cy+16, esc(format.Number(m.Min, -1)))
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" fill="#667" text-anchor="middle">%s</text>`,
		cx+r, cy+16, esc(format.Number(m.Max, -1)))

	return b.String() + "</svg>"
}
