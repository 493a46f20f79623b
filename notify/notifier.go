// Package notify records operational events (service start/stop, errors,
// resource anomalies) to an append-only JSONL log for operator review.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// logFile is the filename of the event log within the logs directory.
const logFile = "notifications.log"

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Event is one logged notification.
type Event struct {
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Service   string `json:"service"`
}

// Notifier appends events to the notification log and mirrors them to the
// structured logger.
type Notifier struct {
	dir     string
	service string
	logger  *slog.Logger

	// now is overridable for tests.
	now func() time.Time
}

// New creates a Notifier writing under dir, creating the directory if needed.
func New(dir, service string, logger *slog.Logger) (*Notifier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notify: create directory %s: %w", dir, err)
	}
	return &Notifier{
		dir:     dir,
		service: service,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Started records a service-start event.
func (n *Notifier) Started() error {
	return n.emit(LevelInfo, "monitoring service started")
}

// Stopped records a service-stop event.
func (n *Notifier) Stopped() error {
	return n.emit(LevelInfo, "monitoring service stopped")
}

// Error records an error event.
func (n *Notifier) Error(msg string) error {
	return n.emit(LevelError, msg)
}

// Anomalies records a single warning event summarizing detected anomalies.
// It is a no-op for an empty slice.
func (n *Notifier) Anomalies(anomalies []string) error {
	if len(anomalies) == 0 {
		return nil
	}
	return n.emit(LevelWarning, "anomalies detected: "+strings.Join(anomalies, "; "))
}

// emit appends one event line and mirrors it to the logger.
func (n *Notifier) emit(level Level, message string) error {
	event := Event{
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   message,
		Service:   n.service,
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	path := filepath.Join(n.dir, logFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("notify: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("notify: append event: %w", err)
	}

	if n.logger != nil {
		switch level {
		case LevelError:
			n.logger.Error(message, "service", n.service)
		case LevelWarning:
			n.logger.Warn(message, "service", n.service)
		default:
			n.logger.Info(message, "service", n.service)
		}
	}

	return nil
}

// Recent returns up to limit most recent events, newest last. A missing log
// is an empty history; undecodable lines are skipped.
func (n *Notifier) Recent(limit int) ([]Event, error) {
	path := filepath.Join(n.dir, logFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("notify: read log: %w", err)
	}

	var events []Event
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		events = append(events, event)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
