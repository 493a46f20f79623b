package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks holds the eight unicode block characters used for sparkline
// rendering, from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineConfig controls the appearance of a sparkline chart.
type SparklineConfig struct {
	// Data points to render, oldest first.
	Data []float64
	// Width is the character width of the chart. Data shorter than Width is
	// left-padded with spaces; longer data is truncated to the newest points.
	// If 0, uses len(Data).
	Width int
	// Min and Max set a fixed scale. If Min == Max the chart auto-scales to
	// the data range.
	Min float64
	Max float64
	// Color is applied to the sparkline characters when non-empty.
	Color lipgloss.Color
}

// dataBounds returns the minimum and maximum of data.
func dataBounds(data []float64) (float64, float64) {
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// RenderSparkline renders a unicode sparkline from the given configuration.
// An empty Data slice renders as an empty string.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data
	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := cfg.Min, cfg.Max
	if lo == hi {
		lo, hi = dataBounds(data)
	}

	var sb strings.Builder
	if pad := width - len(data); pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	for _, v := range data {
		if lo == hi {
			// Flat series: render at mid level.
			sb.WriteRune(sparkBlocks[len(sparkBlocks)/2])
			continue
		}
		frac := (v - lo) / (hi - lo)
		frac = math.Max(0, math.Min(1, frac))
		sb.WriteRune(sparkBlocks[int(frac*float64(len(sparkBlocks)-1))])
	}

	out := sb.String()
	if cfg.Color != "" {
		out = lipgloss.NewStyle().Foreground(cfg.Color).Render(out)
	}
	return out
}

// RenderPercentSparkline renders a sparkline on a fixed 0-100 scale, so that
// percentage charts keep a stable baseline as values change.
func RenderPercentSparkline(data []float64, width int, color lipgloss.Color) string {
	return RenderSparkline(SparklineConfig{
		Data:  data,
		Width: width,
		Min:   0,
		Max:   100,
		Color: color,
	})
}
