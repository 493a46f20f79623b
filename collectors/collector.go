// Package collectors provides the data collection interface and registration
// for opspulse metrics gathering. Each collector is responsible for sampling
// one source of operational data and returning a structured result the daemon
// can store and publish.
package collectors

import (
	"context"
	"time"
)

// Collector is the interface that all data collectors must implement.
type Collector interface {
	// Name returns the collector's unique identifier (e.g., "sysmetrics").
	// Names must be unique within a Registry.
	Name() string

	// Description returns a human-readable description of what this collector gathers.
	Description() string

	// Interval returns the recommended sampling interval for this collector.
	// The daemon uses this as the default cadence when the configuration does
	// not override it.
	Interval() time.Duration

	// Collect gathers one sample. The Sample field in CollectResult must be
	// JSON-serializable for storage and the HTTP API. Non-fatal issues should
	// be reported as Warnings rather than errors. The context should be
	// respected for cancellation.
	Collect(ctx context.Context) (*CollectResult, error)
}

// CollectResult holds the output of a single collection run.
type CollectResult struct {
	// Collector is the name of the collector that produced this result.
	Collector string `json:"collector"`

	// Timestamp records when the collection completed.
	Timestamp time.Time `json:"timestamp"`

	// Sample is the collector-specific structured data.
	Sample interface{} `json:"sample"`

	// Warnings contains non-fatal issues encountered during collection,
	// such as one probe failing while the others succeed.
	Warnings []string `json:"warnings,omitempty"`
}

// Registry holds registered collectors and provides lookup by name.
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a new empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
	}
}

// Register adds a collector to the registry.
// If a collector with the same name already exists, it is replaced.
func (r *Registry) Register(c Collector) {
	for i, existing := range r.collectors {
		if existing.Name() == c.Name() {
			r.collectors[i] = c
			return
		}
	}
	r.collectors = append(r.collectors, c)
}

// Get returns a collector by name. The second return value indicates
// whether the collector was found.
func (r *Registry) Get(name string) (Collector, bool) {
	for _, c := range r.collectors {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// All returns all registered collectors in registration order.
func (r *Registry) All() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
