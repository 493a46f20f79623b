package sysmetrics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/opspulse/opspulse/collectors"
)

const (
	// collectorName is the unique identifier for this collector.
	collectorName = "sysmetrics"

	// collectorDescription describes what this collector gathers.
	collectorDescription = "Local system metrics (CPU, memory, disk, network, processes)"

	// defaultInterval is the recommended sampling interval.
	defaultInterval = 5 * time.Second

	// defaultDiskPath is the volume whose usage is reported.
	defaultDiskPath = "/"
)

// Collector implements collectors.Collector for local system resources.
// Network throughput is reported as the delta of the cumulative interface
// counters between consecutive samples, so the first sample reports zero.
type Collector struct {
	logger *slog.Logger

	// diskPath is the mount point whose usage is sampled.
	diskPath string

	// anomalyThreshold is the utilization percentage above which a metric
	// is reported as an anomaly warning.
	anomalyThreshold float64

	// prevRx and prevTx hold the last cumulative network counters.
	prevRx, prevTx uint64
	haveNetBase    bool

	// Overridable samplers for testing.
	cpuPercent    func(ctx context.Context) ([]float64, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	diskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	netCounters   func(ctx context.Context) ([]net.IOCountersStat, error)
	processPids   func(ctx context.Context) ([]int32, error)
}

// NewCollector creates a Collector sampling the root volume with the given
// anomaly threshold. If logger is nil, a no-op logger is used.
func NewCollector(anomalyThreshold float64, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Collector{
		logger:           logger,
		diskPath:         defaultDiskPath,
		anomalyThreshold: anomalyThreshold,
		cpuPercent: func(ctx context.Context) ([]float64, error) {
			return cpu.PercentWithContext(ctx, 0, false)
		},
		virtualMemory: func(ctx context.Context) (*mem.VirtualMemoryStat, error) {
			return mem.VirtualMemoryWithContext(ctx)
		},
		diskUsage: func(ctx context.Context, path string) (*disk.UsageStat, error) {
			return disk.UsageWithContext(ctx, path)
		},
		netCounters: func(ctx context.Context) ([]net.IOCountersStat, error) {
			return net.IOCountersWithContext(ctx, false)
		},
		processPids: func(ctx context.Context) ([]int32, error) {
			return process.PidsWithContext(ctx)
		},
	}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string {
	return collectorName
}

// Description returns a human-readable description of what this collector gathers.
func (c *Collector) Description() string {
	return collectorDescription
}

// Interval returns the recommended sampling interval.
func (c *Collector) Interval() time.Duration {
	return defaultInterval
}

// Collect gathers one SystemSample. Failures of individual probes are
// reported as warnings with the affected fields left at zero; a sample is
// always produced.
func (c *Collector) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var warnings []string
	sample := &SystemSample{Timestamp: time.Now()}

	if pcts, err := c.cpuPercent(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("sysmetrics: cpu percent: %v", err))
	} else if len(pcts) > 0 {
		sample.CPUUsage = clampPercent(pcts[0])
	}

	if vm, err := c.virtualMemory(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("sysmetrics: virtual memory: %v", err))
	} else {
		sample.MemoryUsed = vm.Used
		sample.MemoryTotal = vm.Total
		sample.MemoryUsagePercent = clampPercent(vm.UsedPercent)
	}

	if du, err := c.diskUsage(ctx, c.diskPath); err != nil {
		warnings = append(warnings, fmt.Sprintf("sysmetrics: disk usage %s: %v", c.diskPath, err))
	} else {
		sample.DiskUsed = du.Used
		sample.DiskTotal = du.Total
		sample.DiskUsagePercent = clampPercent(du.UsedPercent)
	}

	if counters, err := c.netCounters(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("sysmetrics: net counters: %v", err))
	} else if len(counters) > 0 {
		sample.NetworkRx, sample.NetworkTx = c.networkDelta(counters[0].BytesRecv, counters[0].BytesSent)
	}

	if pids, err := c.processPids(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("sysmetrics: process pids: %v", err))
	} else {
		sample.ProcessesCount = len(pids)
	}

	c.logger.Debug("sysmetrics collected",
		"cpu", fmt.Sprintf("%.1f%%", sample.CPUUsage),
		"mem", fmt.Sprintf("%.1f%%", sample.MemoryUsagePercent),
		"disk", fmt.Sprintf("%.1f%%", sample.DiskUsagePercent),
		"net_rx", sample.NetworkRx,
		"net_tx", sample.NetworkTx,
		"procs", sample.ProcessesCount,
	)

	return &collectors.CollectResult{
		Collector: collectorName,
		Timestamp: sample.Timestamp,
		Sample:    sample,
		Warnings:  warnings,
	}, nil
}

// networkDelta converts cumulative interface counters into per-interval
// deltas. The first call seeds the baseline and reports zero. A counter
// going backwards (interface reset) also reports zero and reseeds.
func (c *Collector) networkDelta(rx, tx uint64) (uint64, uint64) {
	if !c.haveNetBase {
		c.prevRx, c.prevTx = rx, tx
		c.haveNetBase = true
		return 0, 0
	}

	var dRx, dTx uint64
	if rx >= c.prevRx {
		dRx = rx - c.prevRx
	}
	if tx >= c.prevTx {
		dTx = tx - c.prevTx
	}

	c.prevRx, c.prevTx = rx, tx
	return dRx, dTx
}

// Anomalies returns warning strings for every utilization metric above the
// configured threshold. An empty slice means the sample is within bounds.
func (c *Collector) Anomalies(sample *SystemSample) []string {
	var anomalies []string

	if sample.CPUUsage > c.anomalyThreshold {
		anomalies = append(anomalies, fmt.Sprintf("high CPU usage: %.1f%%", sample.CPUUsage))
	}
	if sample.MemoryUsagePercent > c.anomalyThreshold {
		anomalies = append(anomalies, fmt.Sprintf("high memory usage: %.1f%%", sample.MemoryUsagePercent))
	}
	if sample.DiskUsagePercent > c.anomalyThreshold {
		anomalies = append(anomalies, fmt.Sprintf("high disk usage: %.1f%%", sample.DiskUsagePercent))
	}

	return anomalies
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Compile-time interface compliance check.
var _ collectors.Collector = (*Collector)(nil)
