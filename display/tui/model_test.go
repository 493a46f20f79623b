package tui

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opspulse/opspulse/client"
	"github.com/opspulse/opspulse/collectors/sysmetrics"
)

var errTest = errors.New("boom")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	poller := client.NewPoller("http://127.0.0.1:9/metrics", testLogger())
	return NewModel(poller, 5*time.Second, 20, testLogger())
}

func testSample() *sysmetrics.SystemSample {
	return &sysmetrics.SystemSample{
		Timestamp:          time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		CPUUsage:           42.37,
		MemoryUsed:         10 * 1024 * 1024 * 1024,
		MemoryTotal:        100 * 1024 * 1024 * 1024,
		MemoryUsagePercent: 10.0,
		DiskUsed:           55 * 1024 * 1024 * 1024,
		DiskTotal:          1000 * 1024 * 1024 * 1024,
		DiskUsagePercent:   5.5,
		NetworkRx:          2048,
		NetworkTx:          0,
		ProcessesCount:     120,
	}
}

func TestNewModel_ChartMap(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		chart    string
		datasets []string
	}{
		{chartCPU, []string{"usage"}},
		{chartMemory, []string{"usage"}},
		{chartDisk, []string{"usage"}},
		{chartNetwork, []string{"rx", "tx"}},
	}

	if len(m.charts) != len(tests) {
		t.Fatalf("expected %d charts, got %d", len(tests), len(m.charts))
	}
	for _, tt := range tests {
		s, ok := m.charts[tt.chart]
		if !ok {
			t.Fatalf("missing chart %q", tt.chart)
		}
		if s.Window() != 20 {
			t.Errorf("chart %q window = %d, want 20", tt.chart, s.Window())
		}
		names := s.DatasetNames()
		if len(names) != len(tt.datasets) {
			t.Fatalf("chart %q datasets = %v, want %v", tt.chart, names, tt.datasets)
		}
		for i, name := range tt.datasets {
			if names[i] != name {
				t.Errorf("chart %q dataset %d = %q, want %q", tt.chart, i, names[i], name)
			}
		}
	}
}

func TestUpdate_TickSetsInFlightOnce(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if !m.inFlight {
		t.Fatal("expected inFlight after tick")
	}
	if cmd == nil {
		t.Fatal("expected tick to schedule commands")
	}

	// A second tick while a poll is outstanding must not clear or re-arm
	// the guard; the poll is skipped.
	next, _ = m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if !m.inFlight {
		t.Fatal("expected inFlight to stay set across skipped tick")
	}
}

func TestUpdate_SampleAppendsToAllCharts(t *testing.T) {
	m := newTestModel(t)
	m.inFlight = true

	next, _ := m.Update(sampleMsg{sample: testSample()})
	m = next.(Model)

	if m.inFlight {
		t.Error("expected inFlight cleared after sample")
	}
	if m.status.State != client.StateConnected {
		t.Errorf("status = %v, want connected", m.status.State)
	}
	if m.status.LastUpdate.IsZero() {
		t.Error("expected LastUpdate set after successful poll")
	}

	for name, s := range m.charts {
		if s.Len() != 1 {
			t.Errorf("chart %q len = %d, want 1", name, s.Len())
		}
	}

	rx, ok := m.charts[chartNetwork].Latest("rx")
	if !ok || rx != 2048 {
		t.Errorf("network rx latest = %v, want 2048", rx)
	}
	tx, ok := m.charts[chartNetwork].Latest("tx")
	if !ok || tx != 0 {
		t.Errorf("network tx latest = %v, want 0", tx)
	}
}

func TestUpdate_WindowCapHolds(t *testing.T) {
	poller := client.NewPoller("http://127.0.0.1:9/metrics", testLogger())
	m := NewModel(poller, time.Second, 5, testLogger())

	for i := 0; i < 12; i++ {
		next, _ := m.Update(sampleMsg{sample: testSample()})
		m = next.(Model)
	}

	for name, s := range m.charts {
		if s.Len() != 5 {
			t.Errorf("chart %q len = %d, want window cap 5", name, s.Len())
		}
		labels := s.Labels()
		for _, ds := range s.DatasetNames() {
			if got := len(s.Points(ds)); got != len(labels) {
				t.Errorf("chart %q dataset %q len = %d, labels len = %d",
					name, ds, got, len(labels))
			}
		}
	}
}

func TestUpdate_PollErrorLeavesSeriesUntouched(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(sampleMsg{sample: testSample()})
	m = next.(Model)
	lastUpdate := m.status.LastUpdate

	next, _ = m.Update(pollErrMsg{err: errors.New("connection refused")})
	m = next.(Model)

	if m.inFlight {
		t.Error("expected inFlight cleared after poll error")
	}
	if m.status.State != client.StateError {
		t.Errorf("status = %v, want error", m.status.State)
	}
	if m.status.Message == "" {
		t.Error("expected non-empty error message")
	}
	if !m.status.LastUpdate.Equal(lastUpdate) {
		t.Error("expected LastUpdate preserved across failed poll")
	}
	for name, s := range m.charts {
		if s.Len() != 1 {
			t.Errorf("chart %q len = %d after failed poll, want 1", name, s.Len())
		}
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestUpdate_RefreshRespectsGuard(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected refresh to issue a poll")
	}
	if !m.inFlight {
		t.Fatal("expected inFlight after refresh")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd != nil {
		t.Error("expected refresh to be skipped while poll outstanding")
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}
