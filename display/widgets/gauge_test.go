package widgets

import (
	"strings"
	"testing"
)

func TestRenderGauge_HalfFull(t *testing.T) {
	result := RenderGauge(GaugeConfig{
		Width:       10,
		Percent:     50,
		ShowPercent: true,
	})

	if got := strings.Count(result, "█"); got != 5 {
		t.Errorf("expected 5 filled chars at 50%%, got %d: %q", got, result)
	}
	if got := strings.Count(result, "░"); got != 5 {
		t.Errorf("expected 5 empty chars at 50%%, got %d: %q", got, result)
	}
	if !strings.HasSuffix(result, "50.0%") {
		t.Errorf("expected percent suffix, got: %q", result)
	}
}

func TestRenderGauge_ClampsPercent(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		filled  int
	}{
		{"negative", -10, 0},
		{"over 100", 250, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderGauge(GaugeConfig{Width: 10, Percent: tt.percent})
			if got := strings.Count(result, "█"); got != tt.filled {
				t.Errorf("expected %d filled chars, got %d: %q", tt.filled, got, result)
			}
		})
	}
}

func TestRenderGauge_DefaultWidth(t *testing.T) {
	result := RenderGauge(GaugeConfig{Percent: 100})

	if got := strings.Count(result, "█"); got != 20 {
		t.Errorf("expected default width 20, got %d filled chars: %q", got, result)
	}
}

func TestRenderGauge_PercentFormat(t *testing.T) {
	result := RenderGauge(GaugeConfig{
		Width:       10,
		Percent:     42.37,
		ShowPercent: true,
	})

	if !strings.HasSuffix(result, "42.4%") {
		t.Errorf("expected one-decimal percent, got: %q", result)
	}
}

func TestRenderMiniGauge_NoText(t *testing.T) {
	result := RenderMiniGauge(75, 8)

	if strings.Contains(result, "%") {
		t.Errorf("expected no percent text in mini gauge, got: %q", result)
	}
	if got := strings.Count(result, "█") + strings.Count(result, "░"); got != 8 {
		t.Errorf("expected 8 bar chars, got %d: %q", got, result)
	}
}

func TestGaugeColor_Thresholds(t *testing.T) {
	cfg := DefaultGaugeConfig()

	tests := []struct {
		percent float64
		want    string
	}{
		{10, "#22C55E"},
		{69.9, "#22C55E"},
		{70, "#EAB308"},
		{89.9, "#EAB308"},
		{90, "#EF4444"},
		{100, "#EF4444"},
	}

	for _, tt := range tests {
		got := gaugeColor(tt.percent, cfg.ThresholdWarning, cfg.ThresholdDanger)
		if string(got) != tt.want {
			t.Errorf("gaugeColor(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}
