package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opspulse/opspulse/collectors"
	"github.com/opspulse/opspulse/collectors/sysmetrics"
	"github.com/opspulse/opspulse/config"
	"github.com/opspulse/opspulse/notify"
	"github.com/opspulse/opspulse/server"
	"github.com/opspulse/opspulse/storage"
)

// monitorDaemon owns the sampling loop: it runs the registered collectors on
// a fixed cadence, publishes the latest sample to the HTTP server, appends
// history, and emits anomaly notifications.
type monitorDaemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *collectors.Registry
	sys      *sysmetrics.Collector
	store    *storage.Store
	notifier *notify.Notifier
	current  *server.Current
	srv      *server.Server
}

// newMonitorDaemon wires the daemon from the configuration: storage,
// notifier, the system metrics collector, and the HTTP server.
func newMonitorDaemon(cfg *config.Config, logger *slog.Logger) (*monitorDaemon, error) {
	store, err := storage.NewStore(cfg.Storage.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	notifier, err := notify.New(cfg.Logs.Dir, "opspulse", logger)
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	sys := sysmetrics.NewCollector(cfg.Monitoring.AnomalyThreshold, logger)
	registry := collectors.NewRegistry()
	registry.Register(sys)

	current := &server.Current{}
	srv := server.New(cfg.ListenAddr(), current, store, logger)

	return &monitorDaemon{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		sys:      sys,
		store:    store,
		notifier: notifier,
		current:  current,
		srv:      srv,
	}, nil
}

// run starts the HTTP server and the sampling loop. The first collection
// happens immediately; afterwards the loop ticks at the configured interval
// until ctx is cancelled.
func (d *monitorDaemon) run(ctx context.Context) error {
	if err := d.notifier.Started(); err != nil {
		d.logger.Warn("start notification failed", "error", err)
	}

	d.srv.Start()

	interval := d.cfg.SampleInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("monitor started",
		"interval", interval,
		"addr", d.cfg.ListenAddr(),
	)

	d.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("monitor shutting down")
			return d.shutdown()
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

// shutdown stops the HTTP server and records the stop notification.
func (d *monitorDaemon) shutdown() error {
	if err := d.notifier.Stopped(); err != nil {
		d.logger.Warn("stop notification failed", "error", err)
	}
	if err := d.srv.Shutdown(); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	return nil
}

// runOnce performs a single collection pass across all registered collectors
// and processes every system sample produced.
func (d *monitorDaemon) runOnce(ctx context.Context) {
	for _, c := range d.registry.All() {
		result, err := c.Collect(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("collector failed", "name", c.Name(), "error", err)
			if nerr := d.notifier.Error(fmt.Sprintf("%s: %v", c.Name(), err)); nerr != nil {
				d.logger.Warn("error notification failed", "error", nerr)
			}
			continue
		}

		for _, w := range result.Warnings {
			d.logger.Warn("collector warning", "name", c.Name(), "warning", w)
		}

		sample, ok := result.Sample.(*sysmetrics.SystemSample)
		if !ok {
			continue
		}
		d.processSample(sample)
	}
}

// processSample publishes a sample to the HTTP server, persists it, prunes
// history to the retention cap, evaluates anomalies, and refreshes the
// health file.
func (d *monitorDaemon) processSample(sample *sysmetrics.SystemSample) {
	d.current.Set(sample)

	if err := d.store.Append(sample); err != nil {
		d.logger.Error("history append failed", "error", err)
	} else if err := d.store.Prune(d.cfg.Storage.MaxRecords); err != nil {
		d.logger.Error("history prune failed", "error", err)
	}

	if anomalies := d.sys.Anomalies(sample); len(anomalies) > 0 {
		if err := d.notifier.Anomalies(anomalies); err != nil {
			d.logger.Warn("anomaly notification failed", "error", err)
		}
	}

	if err := writeHealthFile(d.cfg.Storage.Dir, sample.Timestamp); err != nil {
		d.logger.Warn("health file write failed", "error", err)
	}
}
