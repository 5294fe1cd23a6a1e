package chart

import (
	"github.com/guptarohit/asciigraph"
)

const noData = "(no data in selected range)"

// ASCIILine plots values for a terminal. asciigraph needs at least one point,
// so an empty slice renders a placeholder line instead.
func ASCIILine(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return noData
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(2),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(values, opts...)
}
