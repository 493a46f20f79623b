package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/opspulse/opspulse/collectors/sysmetrics"
)

const (
	// DefaultPollInterval is the cadence between polls.
	DefaultPollInterval = 5 * time.Second

	// requestTimeout bounds a single metrics request. A hung endpoint fails
	// the cycle instead of stalling the dashboard indefinitely.
	requestTimeout = 10 * time.Second

	// maxResponseBytes limits the response body size to prevent unbounded reads.
	maxResponseBytes = 1 << 20 // 1 MiB

	userAgent = "opspulse-dashboard/1.0"
)

// EndpointError represents a non-success HTTP response from the metrics
// endpoint.
type EndpointError struct {
	StatusCode int
	Status     string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("metrics endpoint returned %s", e.Status)
}

// Poller fetches samples from a metrics endpoint. All failure modes —
// transport errors, non-2xx statuses, undecodable payloads — surface as a
// single error category the caller maps to a disconnected status.
type Poller struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPoller creates a Poller for the given metrics URL with a 10-second
// request timeout. If logger is nil, a no-op logger is used.
func NewPoller(url string, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Poller{
		url: url,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// URL returns the polled endpoint.
func (p *Poller) URL() string {
	return p.url
}

// Fetch performs one GET against the metrics endpoint and decodes the sample.
func (p *Poller) Fetch(ctx context.Context) (*sysmetrics.SystemSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug("metrics fetch failed", "url", p.url, "error", err)
		return nil, fmt.Errorf("client: fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Debug("metrics fetch failed", "url", p.url, "status", resp.Status)
		return nil, &EndpointError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body := io.LimitReader(resp.Body, maxResponseBytes)
	var sample sysmetrics.SystemSample
	if err := json.NewDecoder(body).Decode(&sample); err != nil {
		p.logger.Debug("metrics decode failed", "url", p.url, "error", err)
		return nil, fmt.Errorf("client: decode metrics: %w", err)
	}

	return &sample, nil
}
