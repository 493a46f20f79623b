// opspulse is a lightweight system resource monitor.
//
// A background service samples CPU, memory, disk, network, and process
// metrics on a fixed cadence, appends them to a local history file, writes
// anomaly notifications, and serves the latest sample over HTTP. A terminal
// dashboard (and an embedded browser page) polls that endpoint and renders
// rolling charts with a connection indicator.
//
// Usage:
//
//	opspulse run                  Run the monitor in the foreground
//	opspulse dashboard            Launch the terminal dashboard
//	opspulse install|uninstall    Manage the system service
//	opspulse start|stop|restart   Control the system service
//	opspulse status               Show service status
//	opspulse config               Print the effective configuration
//	opspulse health               Check monitor liveness
//	opspulse version              Print version information
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opspulse/opspulse/client"
	"github.com/opspulse/opspulse/config"
	"github.com/opspulse/opspulse/display/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "opspulse",
	Short: "Local system resource monitor with terminal and web dashboards",
	Long: `opspulse samples CPU, memory, disk, network, and process metrics,
keeps a local history, and serves them over HTTP for the bundled dashboards.

Examples:
  opspulse run
  opspulse dashboard
  opspulse dashboard --url http://127.0.0.1:8080/metrics
  OPSPULSE_CONFIG=/etc/opspulse/config.yaml opspulse run`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (default: config/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("opspulse")
	viper.AutomaticEnv()

	dashboardCmd.Flags().String("url", "", "Metrics endpoint URL (overrides config)")
	viper.BindPFlag("url", dashboardCmd.Flags().Lookup("url"))

	healthCmd.Flags().Bool("json", false, "Output health check as JSON")

	rootCmd.AddCommand(
		runCmd,
		dashboardCmd,
		installCmd,
		uninstallCmd,
		startCmd,
		stopCmd,
		restartCmd,
		statusCmd,
		configCmd,
		healthCmd,
		versionCmd,
	)
}

// configPath resolves the configuration file path: flag/env first, then the
// conventional config/config.yaml next to the working directory.
func configPath() string {
	if p := viper.GetString("config"); p != "" {
		return p
	}
	return filepath.Join("config", config.DefaultFileName)
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor in the foreground",
	Long: `Run the monitor loop in the foreground: sample system metrics on the
configured interval, persist history, and serve HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(viper.GetBool("verbose"))

		d, err := newMonitorDaemon(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return d.run(ctx)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the terminal dashboard",
	Long: `Launch the interactive terminal dashboard. It polls the monitor's
metrics endpoint every few seconds and renders rolling CPU, memory, disk,
and network charts with a connection indicator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(viper.GetBool("verbose"))

		url := cfg.Dashboard.URL
		if u := viper.GetString("url"); u != "" {
			url = u
		}

		poller := client.NewPoller(url, logger)
		model := tui.NewModel(poller, cfg.PollInterval(), cfg.Dashboard.Window, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return tui.Run(ctx, model)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Printf("# %s\n%s", configPath(), data)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check monitor liveness",
	Long: `Check whether the monitor is alive by inspecting its health file.
Exits 0 when the last sample is recent, 1 when missing or stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		jsonOut, _ := cmd.Flags().GetBool("json")
		os.Exit(checkHealth(cfg.Storage.Dir, cfg.SampleInterval(), jsonOut))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opspulse %s (%s) built %s\n", version, commit, date)
	},
}
