package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opspulse/opspulse/client"
	"github.com/opspulse/opspulse/collectors/sysmetrics"
	"github.com/opspulse/opspulse/display/widgets"
	"github.com/opspulse/opspulse/internal/format"
)

// Value text helpers. These produce the exact strings shown next to each
// chart and are kept free of styling so they can be verified directly.

func cpuValueText(s *sysmetrics.SystemSample) string {
	return format.Percent(s.CPUUsage)
}

func memoryValueText(s *sysmetrics.SystemSample) string {
	return format.Percent(s.MemoryUsagePercent)
}

func diskValueText(s *sysmetrics.SystemSample) string {
	return format.Percent(s.DiskUsagePercent)
}

func networkValueText(s *sysmetrics.SystemSample) string {
	return format.RatePair(s.NetworkRx, s.NetworkTx)
}

func processesValueText(s *sysmetrics.SystemSample) string {
	return format.Count(s.ProcessesCount)
}

// statusLevel maps a connection state to its widget indicator level.
func statusLevel(s client.State) widgets.StatusLevel {
	switch s {
	case client.StateConnected:
		return widgets.StatusOK
	case client.StateError:
		return widgets.StatusCritical
	default:
		return widgets.StatusUnknown
	}
}

// statusText returns the human-readable connection line.
func statusText(st client.Status) string {
	if st.State == client.StateUnknown {
		return "connecting..."
	}
	return st.Message
}

// View implements tea.Model. The frame is rebuilt in full from the chart map
// and latest sample; rendering twice from the same state yields the same
// frame.
func (m Model) View() string {
	header := m.renderHeader()
	body := m.renderBody()
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the title bar and connection indicator.
func (m Model) renderHeader() string {
	title := styleHeader.Render("opspulse")
	status := widgets.RenderStatus(statusLevel(m.status.State), statusText(m.status))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
}

// renderBody renders the four metric panels and the process count line.
func (m Model) renderBody() string {
	if m.sample == nil {
		return stylePanel.Render("Waiting for first sample from " + m.poller.URL())
	}

	chartWidth := m.width - 8
	if chartWidth < 10 {
		chartWidth = 10
	}
	if chartWidth > 60 {
		chartWidth = 60
	}

	panels := []string{
		m.renderPercentPanel("CPU", chartCPU, cpuValueText(m.sample), "", chartWidth),
		m.renderPercentPanel("Memory", chartMemory, memoryValueText(m.sample),
			format.Bytes(m.sample.MemoryUsed)+" / "+format.Bytes(m.sample.MemoryTotal), chartWidth),
		m.renderPercentPanel("Disk", chartDisk, diskValueText(m.sample),
			format.Bytes(m.sample.DiskUsed)+" / "+format.Bytes(m.sample.DiskTotal), chartWidth),
		m.renderNetworkPanel(chartWidth),
		"Processes: " + styleValue.Render(processesValueText(m.sample)),
	}

	return strings.Join(panels, "\n")
}

// renderPercentPanel renders one percentage chart: title, current value,
// gauge, and a sparkline of the rolling window on a fixed 0-100 scale.
func (m Model) renderPercentPanel(title, chart, value, detail string, width int) string {
	series := m.charts[chart]
	data, _ := latestPercent(series)

	lines := []string{
		stylePanelTitle.Render(title) + " " + styleValue.Render(value) + dimDetail(detail),
		widgets.RenderGauge(widgets.GaugeConfig{
			Width:            width,
			Percent:          data,
			ShowPercent:      false,
			ThresholdWarning: 70,
			ThresholdDanger:  90,
		}),
		widgets.RenderPercentSparkline(series.Points("usage"), width, colorSecondary),
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

// renderNetworkPanel renders the RX/TX chart pair sharing one label axis.
func (m Model) renderNetworkPanel(width int) string {
	series := m.charts[chartNetwork]

	lines := []string{
		stylePanelTitle.Render("Network") + " " + styleValue.Render(networkValueText(m.sample)),
		fmt.Sprintf("rx %s", widgets.RenderSparkline(widgets.SparklineConfig{
			Data:  series.Points("rx"),
			Width: width - 3,
			Color: colorSuccess,
		})),
		fmt.Sprintf("tx %s", widgets.RenderSparkline(widgets.SparklineConfig{
			Data:  series.Points("tx"),
			Width: width - 3,
			Color: colorSecondary,
		})),
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

// renderFooter renders the key help and last successful update time.
func (m Model) renderFooter() string {
	help := "q: quit | r: refresh"
	if !m.status.LastUpdate.IsZero() {
		help += "  |  Updated: " + format.Since(m.status.LastUpdate)
	}
	return styleFooter.Render(help)
}

// latestPercent returns the newest value of a single-dataset percent series,
// or 0 when the series is still empty.
func latestPercent(s *client.Series) (float64, bool) {
	return s.Latest("usage")
}

// dimDetail renders supplementary text in the muted color, with a leading
// separator when non-empty.
func dimDetail(detail string) string {
	if detail == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(colorMuted).Render("  " + detail)
}
