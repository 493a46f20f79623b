package sysmetrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// newFakeCollector returns a Collector with all samplers replaced by
// deterministic fakes.
func newFakeCollector() *Collector {
	c := NewCollector(90, nil)
	c.cpuPercent = func(context.Context) ([]float64, error) {
		return []float64{42.37}, nil
	}
	c.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 1000, Used: 100, UsedPercent: 10.0}, nil
	}
	c.diskUsage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Path: path, Total: 2000, Used: 110, UsedPercent: 5.5}, nil
	}
	c.netCounters = func(context.Context) ([]net.IOCountersStat, error) {
		return []net.IOCountersStat{{BytesRecv: 10000, BytesSent: 5000}}, nil
	}
	c.processPids = func(context.Context) ([]int32, error) {
		pids := make([]int32, 120)
		return pids, nil
	}
	return c
}

func TestCollector_Collect(t *testing.T) {
	c := newFakeCollector()

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Collector != "sysmetrics" {
		t.Errorf("collector name = %q, want %q", result.Collector, "sysmetrics")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	sample, ok := result.Sample.(*SystemSample)
	if !ok {
		t.Fatalf("sample has type %T, want *SystemSample", result.Sample)
	}

	if sample.CPUUsage != 42.37 {
		t.Errorf("CPUUsage = %v, want 42.37", sample.CPUUsage)
	}
	if sample.MemoryUsagePercent != 10.0 {
		t.Errorf("MemoryUsagePercent = %v, want 10.0", sample.MemoryUsagePercent)
	}
	if sample.DiskUsagePercent != 5.5 {
		t.Errorf("DiskUsagePercent = %v, want 5.5", sample.DiskUsagePercent)
	}
	if sample.ProcessesCount != 120 {
		t.Errorf("ProcessesCount = %v, want 120", sample.ProcessesCount)
	}
	if sample.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestCollector_NetworkDeltaFirstSampleIsZero(t *testing.T) {
	c := newFakeCollector()

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sample := result.Sample.(*SystemSample)

	if sample.NetworkRx != 0 || sample.NetworkTx != 0 {
		t.Errorf("first sample net = (%d, %d), want (0, 0)", sample.NetworkRx, sample.NetworkTx)
	}
}

func TestCollector_NetworkDeltaBetweenSamples(t *testing.T) {
	c := newFakeCollector()

	rx, tx := uint64(10000), uint64(5000)
	c.netCounters = func(context.Context) ([]net.IOCountersStat, error) {
		return []net.IOCountersStat{{BytesRecv: rx, BytesSent: tx}}, nil
	}

	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("seed collect: %v", err)
	}

	rx, tx = 12048, 5000
	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}
	sample := result.Sample.(*SystemSample)

	if sample.NetworkRx != 2048 {
		t.Errorf("NetworkRx = %d, want 2048", sample.NetworkRx)
	}
	if sample.NetworkTx != 0 {
		t.Errorf("NetworkTx = %d, want 0", sample.NetworkTx)
	}
}

func TestCollector_NetworkCounterResetReportsZero(t *testing.T) {
	c := newFakeCollector()

	rx := uint64(10000)
	c.netCounters = func(context.Context) ([]net.IOCountersStat, error) {
		return []net.IOCountersStat{{BytesRecv: rx, BytesSent: rx}}, nil
	}

	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("seed collect: %v", err)
	}

	// Counter went backwards: interface reset.
	rx = 100
	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}
	sample := result.Sample.(*SystemSample)

	if sample.NetworkRx != 0 || sample.NetworkTx != 0 {
		t.Errorf("net after reset = (%d, %d), want (0, 0)", sample.NetworkRx, sample.NetworkTx)
	}
}

func TestCollector_ProbeFailureBecomesWarning(t *testing.T) {
	c := newFakeCollector()
	c.diskUsage = func(context.Context, string) (*disk.UsageStat, error) {
		return nil, errors.New("permission denied")
	}

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "disk usage") {
		t.Errorf("warning %q does not mention disk usage", result.Warnings[0])
	}

	sample := result.Sample.(*SystemSample)
	if sample.DiskUsagePercent != 0 {
		t.Errorf("DiskUsagePercent = %v after probe failure, want 0", sample.DiskUsagePercent)
	}
	// The other probes still populate the sample.
	if sample.CPUUsage != 42.37 {
		t.Errorf("CPUUsage = %v, want 42.37", sample.CPUUsage)
	}
}

func TestCollector_CancelledContext(t *testing.T) {
	c := newFakeCollector()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect with cancelled context returned %v, want context.Canceled", err)
	}
}

func TestCollector_Anomalies(t *testing.T) {
	c := NewCollector(90, nil)

	cases := []struct {
		name   string
		sample SystemSample
		want   int
	}{
		{"all nominal", SystemSample{CPUUsage: 50, MemoryUsagePercent: 60, DiskUsagePercent: 70}, 0},
		{"high cpu", SystemSample{CPUUsage: 95}, 1},
		{"high cpu and memory", SystemSample{CPUUsage: 95, MemoryUsagePercent: 91}, 2},
		{"everything high", SystemSample{CPUUsage: 99, MemoryUsagePercent: 99, DiskUsagePercent: 99}, 3},
		{"exactly at threshold is not anomalous", SystemSample{CPUUsage: 90}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Anomalies(&tc.sample)
			if len(got) != tc.want {
				t.Errorf("Anomalies = %v, want %d entries", got, tc.want)
			}
		})
	}
}

func TestCollector_Metadata(t *testing.T) {
	c := NewCollector(90, nil)

	if c.Name() != "sysmetrics" {
		t.Errorf("Name = %q", c.Name())
	}
	if c.Description() == "" {
		t.Error("Description is empty")
	}
	if c.Interval() <= 0 {
		t.Errorf("Interval = %v, want positive", c.Interval())
	}
}
