package notify

import (
	"testing"
	"time"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	n, err := New(t.TempDir(), "opspulse", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return n
}

func TestNotifier_StartStopEvents(t *testing.T) {
	n := newTestNotifier(t)

	if err := n.Started(); err != nil {
		t.Fatalf("Started: %v", err)
	}
	if err := n.Stopped(); err != nil {
		t.Fatalf("Stopped: %v", err)
	}

	events, err := n.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].Level != LevelInfo || events[1].Level != LevelInfo {
		t.Errorf("levels = %q, %q, want INFO, INFO", events[0].Level, events[1].Level)
	}
	if events[0].Service != "opspulse" {
		t.Errorf("service = %q, want opspulse", events[0].Service)
	}
	if events[0].Timestamp != "2025-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q, want RFC3339 UTC", events[0].Timestamp)
	}
}

func TestNotifier_AnomaliesEmptyIsNoOp(t *testing.T) {
	n := newTestNotifier(t)

	if err := n.Anomalies(nil); err != nil {
		t.Fatalf("Anomalies(nil): %v", err)
	}

	events, err := n.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events for empty anomalies, want 0", len(events))
	}
}

func TestNotifier_AnomaliesJoined(t *testing.T) {
	n := newTestNotifier(t)

	if err := n.Anomalies([]string{"high CPU usage: 95.0%", "high disk usage: 92.0%"}); err != nil {
		t.Fatalf("Anomalies: %v", err)
	}

	events, err := n.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != LevelWarning {
		t.Errorf("level = %q, want WARNING", events[0].Level)
	}
	want := "anomalies detected: high CPU usage: 95.0%; high disk usage: 92.0%"
	if events[0].Message != want {
		t.Errorf("message = %q, want %q", events[0].Message, want)
	}
}

func TestNotifier_RecentLimit(t *testing.T) {
	n := newTestNotifier(t)

	for i := 0; i < 5; i++ {
		if err := n.Error("boom"); err != nil {
			t.Fatalf("Error: %v", err)
		}
	}

	events, err := n.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events with limit 2, want 2", len(events))
	}
}

func TestNotifier_RecentMissingLog(t *testing.T) {
	n := newTestNotifier(t)

	events, err := n.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if events != nil {
		t.Errorf("got %v from missing log, want nil", events)
	}
}
