package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// finite drops NaN and infinite samples, which asciigraph cannot scale.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// PlotColumn draws one recorded column against its reporting steps.
func PlotColumn(column string, steps []int64, values []float64, width, height int) (string, error) {
	data := finite(values)
	if len(data) < 2 {
		return "", fmt.Errorf("viz: column %q has %d plottable values, need at least 2", column, len(data))
	}

	caption := column
	if len(steps) > 0 {
		caption = fmt.Sprintf("%s, steps %d..%d", column, steps[0], steps[len(steps)-1])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

// Chart is the compact plot used by the live view.
func Chart(caption string, values []float64, width, height int) string {
	data := finite(values)
	if len(data) < 2 {
		return Subtle.Render(strings.Repeat("─", width))
	}
	return asciigraph.Plot(data, asciigraph.Height(height), asciigraph.Width(width), asciigraph.Caption(caption))
}

// Sparkline renders the last width values as a single line.
func Sparkline(values []float64, width int) string {
	data := finite(values)
	if len(data) == 0 {
		return strings.Repeat("─", width)
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for _, v := range data {
		norm := (v - lo) / span
		c := string(sparkChars[int(norm*float64(len(sparkChars)-1))])
		switch {
		case norm > 0.7:
			sb.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			sb.WriteString(SparkMid.Render(c))
		default:
			sb.WriteString(SparkLow.Render(c))
		}
	}
	return sb.String()
}
