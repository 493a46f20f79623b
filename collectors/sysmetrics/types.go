// Package sysmetrics provides the local system resource collector for
// opspulse. It samples CPU, memory, disk, network, and process counts via
// gopsutil and exposes them as the sample the HTTP API serves.
package sysmetrics

import "time"

// SystemSample is one point-in-time reading of local system resources.
// Field names form the wire contract of GET /metrics; the dashboard client
// decodes exactly this shape. Immutable once produced.
type SystemSample struct {
	// Timestamp records when the sample was taken.
	Timestamp time.Time `json:"timestamp"`

	// CPUUsage is the CPU utilization percentage (0-100).
	CPUUsage float64 `json:"cpu_usage"`

	// MemoryUsed and MemoryTotal are in bytes.
	MemoryUsed  uint64 `json:"memory_used"`
	MemoryTotal uint64 `json:"memory_total"`

	// MemoryUsagePercent is memory utilization (0-100).
	MemoryUsagePercent float64 `json:"memory_usage_percent"`

	// DiskUsed and DiskTotal are in bytes, for the monitored volume.
	DiskUsed  uint64 `json:"disk_used"`
	DiskTotal uint64 `json:"disk_total"`

	// DiskUsagePercent is disk utilization (0-100).
	DiskUsagePercent float64 `json:"disk_usage_percent"`

	// NetworkRx and NetworkTx are bytes received/sent since the previous
	// sample (per-interval delta of the cumulative interface counters).
	// The first sample after startup reports 0 for both.
	NetworkRx uint64 `json:"network_rx"`
	NetworkTx uint64 `json:"network_tx"`

	// ProcessesCount is the number of running processes.
	ProcessesCount int `json:"processes_count"`
}
