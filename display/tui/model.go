// Package tui implements the terminal dashboard. A bubbletea model polls the
// metrics endpoint on a fixed cadence, maintains bounded rolling series for
// each chart, and redraws the whole screen from that state on every update.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opspulse/opspulse/client"
	"github.com/opspulse/opspulse/collectors/sysmetrics"
)

// Chart names. The dashboard model owns an explicit chart map keyed by these;
// there is no package-level chart state.
const (
	chartCPU     = "cpu"
	chartMemory  = "memory"
	chartDisk    = "disk"
	chartNetwork = "network"
)

// tickMsg fires once per poll interval.
type tickMsg time.Time

// sampleMsg carries a successfully fetched sample.
type sampleMsg struct {
	sample *sysmetrics.SystemSample
}

// pollErrMsg carries a failed poll outcome.
type pollErrMsg struct {
	err error
}

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	poller   *client.Poller
	interval time.Duration
	charts   map[string]*client.Series
	status   client.Status
	sample   *sysmetrics.SystemSample
	logger   *slog.Logger

	// inFlight is true while a poll command is outstanding. Ticks that
	// arrive in that window are skipped so requests never stack up behind
	// a slow endpoint.
	inFlight bool

	width  int
	height int
}

// NewModel returns a dashboard model polling the given endpoint. A
// non-positive interval falls back to client.DefaultPollInterval; a
// non-positive window falls back to client.DefaultWindow. The terminal size
// is detected up front so the first frame renders before any WindowSizeMsg.
func NewModel(poller *client.Poller, interval time.Duration, window int, logger *slog.Logger) Model {
	if interval <= 0 {
		interval = client.DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	w, h := detectTerminalSize()

	return Model{
		poller:   poller,
		interval: interval,
		charts: map[string]*client.Series{
			chartCPU:     client.NewSeries(window, "usage"),
			chartMemory:  client.NewSeries(window, "usage"),
			chartDisk:    client.NewSeries(window, "usage"),
			chartNetwork: client.NewSeries(window, "rx", "tx"),
		},
		logger: logger,
		width:  w,
		height: h,
	}
}

// Init implements tea.Model. The first tick is delivered immediately so the
// first poll happens at startup rather than one interval later.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return tickMsg(time.Now())
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if m.inFlight {
				return m, nil
			}
			m.inFlight = true
			return m, pollCmd(m.poller)
		}

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.interval)}
		if !m.inFlight {
			m.inFlight = true
			cmds = append(cmds, pollCmd(m.poller))
		}
		return m, tea.Batch(cmds...)

	case sampleMsg:
		m.inFlight = false
		m.applySample(msg.sample)
		return m, nil

	case pollErrMsg:
		m.inFlight = false
		m.status = client.Disconnected(m.status, msg.err)
		m.logger.Warn("poll failed", "url", m.poller.URL(), "error", msg.err)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// applySample appends the sample to every chart and marks the connection
// healthy. All four appends share one label so the charts stay aligned.
func (m *Model) applySample(s *sysmetrics.SystemSample) {
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	label := ts.Format("15:04:05")

	points := []struct {
		chart  string
		values []float64
	}{
		{chartCPU, []float64{s.CPUUsage}},
		{chartMemory, []float64{s.MemoryUsagePercent}},
		{chartDisk, []float64{s.DiskUsagePercent}},
		{chartNetwork, []float64{float64(s.NetworkRx), float64(s.NetworkTx)}},
	}
	for _, p := range points {
		if err := m.charts[p.chart].Append(label, p.values...); err != nil {
			m.logger.Warn("chart append failed", "chart", p.chart, "error", err)
		}
	}

	m.sample = s
	m.status = client.Connected(time.Now())
}

// tickCmd schedules the next tick after the poll interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollCmd fetches one sample off the update loop.
func pollCmd(p *client.Poller) tea.Cmd {
	return func() tea.Msg {
		sample, err := p.Fetch(context.Background())
		if err != nil {
			return pollErrMsg{err: err}
		}
		return sampleMsg{sample: sample}
	}
}

// Run starts the dashboard program and blocks until it exits. Cancelling ctx
// shuts the dashboard down cleanly.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
