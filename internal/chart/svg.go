package chart

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

type Point struct {
	X, Y float64
}

type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
	Stroke string
	Fill   string
}

const padding = 40.0

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 360
	}
	if o.Stroke == "" {
		o.Stroke = "#1f77b4"
	}
	if o.Fill == "" {
		o.Fill = o.Stroke
	}
	return o
}

// bounds maps data coordinates onto the plot area inside the padding.
type bounds struct {
	minX, maxX, minY, maxY float64
	w, h                   float64
}

func newBounds(points []Point, o Options, extraY ...float64) bounds {
	b := bounds{
		minX: points[0].X, maxX: points[0].X,
		minY: points[0].Y, maxY: points[0].Y,
		w: float64(o.Width), h: float64(o.Height),
	}
	for _, p := range points {
		b.minX = math.Min(b.minX, p.X)
		b.maxX = math.Max(b.maxX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	for _, y := range extraY {
		b.minY = math.Min(b.minY, y)
		b.maxY = math.Max(b.maxY, y)
	}
	if b.maxX == b.minX {
		b.minX -= 0.5
		b.maxX += 0.5
	}
	if b.maxY == b.minY {
		b.minY -= 0.5
		b.maxY += 0.5
	}
	pad := (b.maxY - b.minY) * 0.05
	b.minY -= pad
	b.maxY += pad
	return b
}

func (b bounds) x(v float64) float64 {
	return padding + (v-b.minX)/(b.maxX-b.minX)*(b.w-2*padding)
}

func (b bounds) y(v float64) float64 {
	return b.h - padding - (v-b.minY)/(b.maxY-b.minY)*(b.h-2*padding)
}

func header(sb *strings.Builder, o Options) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, o.Width, o.Height, o.Width, o.Height)
	if o.Title != "" {
		fmt.Fprintf(sb, `<text x="%d" y="20" text-anchor="middle" font-family="sans-serif" font-size="14">%s</text>
`, o.Width/2, html.EscapeString(o.Title))
	}
}

func axes(sb *strings.Builder, b bounds, o Options) {
	fmt.Fprintf(sb, `<g stroke="#888888" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, padding, b.h-padding, b.w-padding, b.h-padding, padding, padding, padding, b.h-padding)

	fmt.Fprintf(sb, `<g font-family="sans-serif" font-size="10" fill="#444444">
<text x="%.1f" y="%.1f">%s</text>
<text x="%.1f" y="%.1f" text-anchor="end">%s</text>
<text x="%.1f" y="%.1f" text-anchor="end">%s</text>
<text x="%.1f" y="%.1f">%s</text>
`, padding, b.h-padding+14, formatTick(b.minX),
		b.w-padding, b.h-padding+14, formatTick(b.maxX),
		padding-4, b.h-padding, formatTick(b.minY),
		2.0, padding-4, formatTick(b.maxY))
	if o.XLabel != "" {
		fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>
`, b.w/2, b.h-8, html.EscapeString(o.XLabel))
	}
	if o.YLabel != "" {
		fmt.Fprintf(sb, `<text x="12" y="%.1f" text-anchor="middle" transform="rotate(-90 12 %.1f)">%s</text>
`, b.h/2, b.h/2, html.EscapeString(o.YLabel))
	}
	sb.WriteString("</g>\n")
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Placeholder is rendered in place of a chart with no data.
func Placeholder(o Options) string {
	o = o.withDefaults()
	var sb strings.Builder
	header(&sb, o)
	fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#888888">no data in selected range</text>
</svg>`, o.Width/2, o.Height/2)
	return sb.String()
}

func polyline(sb *strings.Builder, points []Point, b bounds) {
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", b.x(p.X), b.y(p.Y))
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", b.x(p.X), b.y(p.Y))
		}
	}
}

func Line(points []Point, o Options) string {
	if len(points) == 0 {
		return Placeholder(o)
	}
	o = o.withDefaults()
	b := newBounds(points, o)

	var sb strings.Builder
	header(&sb, o)
	axes(&sb, b, o)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="2" d="`, o.Stroke)
	polyline(&sb, points, b)
	sb.WriteString("\"/>\n")
	for _, p := range points {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>
`, b.x(p.X), b.y(p.Y), o.Stroke)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// Area fills the region between the series and the bottom of the plot.
func Area(points []Point, o Options) string {
	if len(points) == 0 {
		return Placeholder(o)
	}
	o = o.withDefaults()
	b := newBounds(points, o)
	base := b.h - padding

	var sb strings.Builder
	header(&sb, o)
	axes(&sb, b, o)
	fmt.Fprintf(&sb, `<path fill="%s" fill-opacity="0.35" stroke="%s" stroke-width="2" d="`, o.Fill, o.Stroke)
	polyline(&sb, points, b)
	fmt.Fprintf(&sb, " L%.1f,%.1f L%.1f,%.1f Z\"/>\n",
		b.x(points[len(points)-1].X), base, b.x(points[0].X), base)
	sb.WriteString("</svg>")
	return sb.String()
}

// Scatter draws the points and, when fit is non-nil, the fitted line across
// the x extent of the data with its 95% confidence band.
func Scatter(points []Point, fit *models.Regression, o Options) string {
	if len(points) == 0 {
		return Placeholder(o)
	}
	o = o.withDefaults()

	var extra []float64
	lo, hi := points[0].X, points[0].X
	for _, p := range points {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
	}
	var band []Point
	if fit != nil {
		extra = append(extra, fit.Predict(lo), fit.Predict(hi))
		band = confidenceBand(fit, lo, hi)
		for _, p := range band {
			extra = append(extra, p.Y)
		}
	}
	b := newBounds(points, o, extra...)

	var sb strings.Builder
	header(&sb, o)
	axes(&sb, b, o)
	if len(band) > 0 {
		fmt.Fprintf(&sb, `<path class="band" fill="%s" fill-opacity="0.2" stroke="none" d="`, o.Stroke)
		polyline(&sb, band, b)
		sb.WriteString(" Z\"/>\n")
	}
	fmt.Fprintf(&sb, `<g fill="%s" fill-opacity="0.7">
`, o.Fill)
	for _, p := range points {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3"/>
`, b.x(p.X), b.y(p.Y))
	}
	sb.WriteString("</g>\n")
	if fit != nil {
		fmt.Fprintf(&sb, `<line class="fit" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, b.x(lo), b.y(fit.Predict(lo)), b.x(hi), b.y(fit.Predict(hi)), o.Stroke)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

const bandSteps = 24

// confidenceBand traces the upper limit left to right and the lower limit
// back, as one closed outline. It is empty when the band has no width.
func confidenceBand(fit *models.Regression, lo, hi float64) []Point {
	if l, h := fit.Band(lo); h-l <= 0 {
		return nil
	}
	outline := make([]Point, 0, 2*(bandSteps+1))
	for i := 0; i <= bandSteps; i++ {
		x := lo + (hi-lo)*float64(i)/bandSteps
		_, upper := fit.Band(x)
		outline = append(outline, Point{X: x, Y: upper})
	}
	for i := bandSteps; i >= 0; i-- {
		x := lo + (hi-lo)*float64(i)/bandSteps
		lower, _ := fit.Band(x)
		outline = append(outline, Point{X: x, Y: lower})
	}
	return outline
}

// YearPoints pairs each row's year with the value picked by f.
func YearPoints(series models.Series, f func(models.TimeSeriesRow) float64) []Point {
	points := make([]Point, len(series))
	for i, r := range series {
		points[i] = Point{X: float64(r.Year), Y: f(r)}
	}
	return points
}

// CorrelationPoints uses temperature deviation as x and biodiversity as y.
func CorrelationPoints(series models.Series) []Point {
	points := make([]Point, len(series))
	for i, r := range series {
		points[i] = Point{X: r.TemperatureDeviation, Y: r.BiodiversityIndex}
	}
	return points
}
