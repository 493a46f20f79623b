// Package storage persists the metrics history as an append-only JSONL file.
// One sample per line keeps appends cheap; pruning rewrites the file through
// a temp file and rename so readers never observe a partial history.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opspulse/opspulse/collectors/sysmetrics"
)

// historyFile is the filename of the metrics log within the data directory.
const historyFile = "metrics.jsonl"

// Store appends and loads SystemSample history under a data directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// path returns the history file path.
func (s *Store) path() string {
	return filepath.Join(s.dir, historyFile)
}

// Append writes one sample as a JSON line at the end of the history file.
func (s *Store) Append(sample *sysmetrics.SystemSample) error {
	encoded, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("storage: marshal sample: %w", err)
	}

	f, err := os.OpenFile(s.path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("storage: append sample: %w", err)
	}
	return nil
}

// Load returns the full history in chronological order. A missing file is an
// empty history. Lines that fail to decode are skipped with a warning, so a
// torn write never poisons the whole log.
func (s *Store) Load() ([]sysmetrics.SystemSample, error) {
	f, err := os.Open(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: open history: %w", err)
	}
	defer f.Close()

	var samples []sysmetrics.SystemSample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var sample sysmetrics.SystemSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			if s.logger != nil {
				s.logger.Warn("storage: skipping corrupt history line",
					slog.Int("line", line),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage: scan history: %w", err)
	}

	return samples, nil
}

// Prune trims the history to the newest maxRecords samples. It is a no-op
// while the history fits. The rewrite goes through a temp file and rename.
func (s *Store) Prune(maxRecords int) error {
	if maxRecords <= 0 {
		return nil
	}

	samples, err := s.Load()
	if err != nil {
		return err
	}
	if len(samples) <= maxRecords {
		return nil
	}

	samples = samples[len(samples)-maxRecords:]

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+historyFile+"-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range samples {
		if err := enc.Encode(&samples[i]); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("storage: encode sample: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: flush temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}

	if err := os.Rename(tmpName, s.path()); err != nil {
		return fmt.Errorf("storage: rename temp: %w", err)
	}

	success = true
	return nil
}

// Len reports how many decodable samples the history currently holds.
func (s *Store) Len() (int, error) {
	samples, err := s.Load()
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}
