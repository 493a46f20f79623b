package client

import "time"

// State is the connection state of the dashboard's poll loop.
type State int

const (
	// StateUnknown is the neutral state before the first poll resolves.
	StateUnknown State = iota
	// StateConnected means the last poll succeeded.
	StateConnected
	// StateError means the last poll failed.
	StateError
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status mirrors the outcome of the most recent poll. It carries no history:
// each poll attempt overwrites it entirely. LastUpdate advances only on
// successful polls.
type Status struct {
	State      State
	Message    string
	LastUpdate time.Time
}

// Connected returns a Status for a successful poll at time t.
func Connected(t time.Time) Status {
	return Status{
		State:      StateConnected,
		Message:    "connected",
		LastUpdate: t,
	}
}

// Disconnected returns a Status for a failed poll, preserving the last
// successful update time from prev. A nil error still yields a non-empty
// message.
func Disconnected(prev Status, err error) Status {
	msg := "connection error"
	if err != nil {
		msg = err.Error()
	}
	return Status{
		State:      StateError,
		Message:    msg,
		LastUpdate: prev.LastUpdate,
	}
}
