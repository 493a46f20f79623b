package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opspulse/opspulse/internal/format"
)

// GaugeConfig controls the appearance of a horizontal bar gauge.
type GaugeConfig struct {
	// Width is the character width of the bar.
	Width int
	// Percent is the fill value from 0 to 100; out-of-range values are clamped.
	Percent float64
	// ShowPercent controls whether the formatted percentage is appended.
	ShowPercent bool
	// ThresholdWarning is the percentage at which the bar turns yellow.
	ThresholdWarning float64
	// ThresholdDanger is the percentage at which the bar turns red.
	ThresholdDanger float64
}

// DefaultGaugeConfig returns a GaugeConfig with the dashboard defaults.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		Width:            20,
		ShowPercent:      true,
		ThresholdWarning: 70,
		ThresholdDanger:  90,
	}
}

// gaugeColor returns the bar color for the given percentage.
func gaugeColor(percent, warning, danger float64) lipgloss.Color {
	switch {
	case danger > 0 && percent >= danger:
		return lipgloss.Color("#EF4444")
	case warning > 0 && percent >= warning:
		return lipgloss.Color("#EAB308")
	default:
		return lipgloss.Color("#22C55E")
	}
}

// RenderGauge renders a horizontal bar gauge: ████████░░░░ 42.4%
func RenderGauge(cfg GaugeConfig) string {
	percent := math.Max(0, math.Min(100, cfg.Percent))

	width := cfg.Width
	if width <= 0 {
		width = 20
	}

	filled := int(math.Round(percent / 100.0 * float64(width)))
	color := gaugeColor(percent, cfg.ThresholdWarning, cfg.ThresholdDanger)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		strings.Repeat("░", width-filled)

	if !cfg.ShowPercent {
		return bar
	}
	return bar + " " + format.Percent(percent)
}

// RenderMiniGauge renders a compact bar with no percentage text, using the
// default color thresholds.
func RenderMiniGauge(percent float64, width int) string {
	cfg := DefaultGaugeConfig()
	cfg.Width = width
	cfg.Percent = percent
	cfg.ShowPercent = false
	return RenderGauge(cfg)
}
