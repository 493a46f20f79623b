package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opspulse/opspulse/config"
)

// serviceName is the identifier registered with the system service manager.
const serviceName = "opspulse"

// uninstallGrace is how long the uninstall verb waits after stopping the
// service before removing it, so the manager settles first.
const uninstallGrace = 2 * time.Second

// program adapts the monitor daemon to the service manager interface. It is
// exercised on platforms where the manager drives the process directly; on
// systemd the service unit invokes "opspulse run" instead.
type program struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *program) Start(s service.Service) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(viper.GetBool("verbose"))

	d, err := newMonitorDaemon(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if err := d.run(ctx); err != nil {
			logger.Error("monitor exited", "error", err)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

// newService builds the service handle used by the control verbs.
func newService() (service.Service, error) {
	svcConfig := &service.Config{
		Name:        serviceName,
		DisplayName: "OpsPulse System Monitor",
		Description: "Samples system resource metrics and serves them over HTTP.",
		Arguments:   []string{"run"},
	}

	svc, err := service.New(&program{}, svcConfig)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return svc, nil
}

// requireElevation rejects service control for unprivileged users.
func requireElevation() error {
	if runtime.GOOS != "windows" && os.Geteuid() != 0 {
		return fmt.Errorf("service control requires elevated privileges (try sudo)")
	}
	return nil
}

// ensureWorkingDirs creates the config, logs, and data directories the
// service needs, and writes the default configuration if none exists.
func ensureWorkingDirs(cfg *config.Config) error {
	for _, dir := range []string{cfg.Storage.Dir, cfg.Logs.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	path, err := config.WriteDefault("config")
	if err != nil {
		return err
	}
	fmt.Printf("configuration: %s\n", path)
	return nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start the system service",
	Long: `Register opspulse with the system service manager, create its working
directories, write the default configuration if absent, and start it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireElevation(); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := ensureWorkingDirs(cfg); err != nil {
			return err
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		if err := svc.Install(); err != nil {
			return fmt.Errorf("install service: %w", err)
		}
		fmt.Printf("service %s installed\n", serviceName)

		if err := svc.Start(); err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		fmt.Printf("service %s started\n", serviceName)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the system service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireElevation(); err != nil {
			return err
		}

		svc, err := newService()
		if err != nil {
			return err
		}

		// A failed stop is fine; the service may not be running.
		if err := svc.Stop(); err == nil {
			time.Sleep(uninstallGrace)
		}

		if err := svc.Uninstall(); err != nil {
			return fmt.Errorf("uninstall service: %w", err)
		}
		fmt.Printf("service %s removed\n", serviceName)
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the system service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlService("start")
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the system service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlService("stop")
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the system service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlService("restart")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		status, err := svc.Status()
		if err != nil {
			return fmt.Errorf("service status: %w", err)
		}

		switch status {
		case service.StatusRunning:
			fmt.Printf("service %s is running\n", serviceName)
		case service.StatusStopped:
			fmt.Printf("service %s is stopped\n", serviceName)
		default:
			fmt.Printf("service %s status unknown\n", serviceName)
		}
		return nil
	},
}

// controlService runs one service manager verb.
func controlService(action string) error {
	if err := requireElevation(); err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	if err := service.Control(svc, action); err != nil {
		return fmt.Errorf("%s service: %w", action, err)
	}
	fmt.Printf("service %s: %s ok\n", serviceName, action)
	return nil
}
