package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HealthStatus is the monitor liveness record written after every sample.
type HealthStatus struct {
	Status     string    `json:"status"`
	LastSample time.Time `json:"last_sample"`
	PID        int       `json:"pid"`
}

// healthFile is the liveness filename within the data directory.
const healthFile = "health.json"

// writeHealthFile records the time of the most recent sample.
func writeHealthFile(dataDir string, lastSample time.Time) error {
	status := HealthStatus{
		Status:     "ok",
		LastSample: lastSample,
		PID:        os.Getpid(),
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal health status: %w", err)
	}

	path := filepath.Join(dataDir, healthFile)
	return os.WriteFile(path, data, 0o644)
}

// readHealthFile reads the liveness record from the data directory.
func readHealthFile(dataDir string) (*HealthStatus, error) {
	path := filepath.Join(dataDir, healthFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read health file: %w", err)
	}

	var status HealthStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("unmarshal health file: %w", err)
	}

	return &status, nil
}

// checkHealth reads the health file and reports whether the monitor is
// alive. The monitor counts as healthy when the last sample is within 2x the
// sample interval. Returns exit code 0 for healthy, 1 for unhealthy/missing.
func checkHealth(dataDir string, interval time.Duration, jsonOutput bool) int {
	status, err := readHealthFile(dataDir)
	if err != nil {
		if jsonOutput {
			fmt.Println(`{"status":"missing","error":"no health file found"}`)
		} else {
			fmt.Fprintln(os.Stderr, "monitor not running (no health file)")
		}
		return 1
	}

	staleThreshold := 2 * interval
	age := time.Since(status.LastSample)
	isStale := age > staleThreshold

	if jsonOutput {
		output := map[string]interface{}{
			"status":      status.Status,
			"last_sample": status.LastSample.Format(time.RFC3339),
			"age":         age.String(),
			"stale":       isStale,
			"pid":         status.PID,
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(data))
	} else {
		if isStale {
			fmt.Fprintf(os.Stderr, "monitor stale (last sample %s ago, threshold %s)\n",
				age.Round(time.Second), staleThreshold)
		} else {
			fmt.Printf("monitor healthy (last sample %s ago, pid %d)\n",
				age.Round(time.Second), status.PID)
		}
	}

	if isStale {
		return 1
	}
	return 0
}
