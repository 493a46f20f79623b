// Package client implements the dashboard side of opspulse: polling the
// metrics endpoint and maintaining bounded rolling series for display.
package client

import "fmt"

// DefaultWindow is the default number of points a series retains.
const DefaultWindow = 20

// Series is a bounded rolling time series: an ordered run of labels with one
// or more datasets kept in lock-step with the label axis. Appends go at the
// tail; once the window is full each append evicts exactly one element from
// the head of the label list and of every dataset.
//
// Series is not safe for concurrent use; the dashboard mutates it only from
// its update loop.
type Series struct {
	window   int
	names    []string
	labels   []string
	datasets [][]float64
}

// NewSeries creates an empty series with the given window cap and one dataset
// per name. A window of 0 or less falls back to DefaultWindow. At least one
// dataset name is required.
func NewSeries(window int, names ...string) *Series {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(names) == 0 {
		names = []string{"value"}
	}

	datasets := make([][]float64, len(names))
	return &Series{
		window:   window,
		names:    append([]string(nil), names...),
		datasets: datasets,
	}
}

// Append adds one point per dataset under a shared label. It requires exactly
// one value per dataset so the lock-step invariant cannot be violated by the
// caller. When the window cap is exceeded, the oldest label and the oldest
// point of every dataset are evicted together.
func (s *Series) Append(label string, values ...float64) error {
	if len(values) != len(s.datasets) {
		return fmt.Errorf("series: got %d values for %d datasets", len(values), len(s.datasets))
	}

	s.labels = append(s.labels, label)
	for i, v := range values {
		s.datasets[i] = append(s.datasets[i], v)
	}

	if len(s.labels) > s.window {
		s.labels = s.labels[1:]
		for i := range s.datasets {
			s.datasets[i] = s.datasets[i][1:]
		}
	}

	return nil
}

// Len returns the current number of retained points.
func (s *Series) Len() int {
	return len(s.labels)
}

// Window returns the series cap.
func (s *Series) Window() int {
	return s.window
}

// Labels returns a copy of the label axis, oldest first.
func (s *Series) Labels() []string {
	return append([]string(nil), s.labels...)
}

// DatasetNames returns the dataset names in declaration order.
func (s *Series) DatasetNames() []string {
	return append([]string(nil), s.names...)
}

// Points returns a copy of the named dataset's points, oldest first.
// An unknown name returns nil.
func (s *Series) Points(name string) []float64 {
	for i, n := range s.names {
		if n == name {
			return append([]float64(nil), s.datasets[i]...)
		}
	}
	return nil
}

// Latest returns the newest point of the named dataset. The boolean is false
// when the series is empty or the name is unknown.
func (s *Series) Latest(name string) (float64, bool) {
	for i, n := range s.names {
		if n == name {
			if len(s.datasets[i]) == 0 {
				return 0, false
			}
			return s.datasets[i][len(s.datasets[i])-1], true
		}
	}
	return 0, false
}
