package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/logging"
)

// Set by -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

var (
	configPath string
	logLevel   string
	devMode    bool
	agentAddr  string
)

var rootCmd = &cobra.Command{
	Use:           "chatrelay",
	Short:         "Relay chat conversations into the CRM",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config overlay (overrides "+config.FileEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development logging")
	rootCmd.PersistentFlags().StringVar(&agentAddr, "agent", "", "runtime websocket of the privileged agent (default ws://<host>:<port>/runtime)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, then the overlay file if one was named
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv(config.FileEnv, configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if devMode {
		cfg.Logging.Development = true
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
}

// agentURL returns the runtime websocket of the agent listening on addr
func agentURL(addr string) string {
	if agentAddr != "" {
		return agentAddr
	}
	return "ws://" + addr + "/runtime"
}
