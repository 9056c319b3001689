package cli

import (
	"fmt"
	"os"

	"jury-dashboard/config"
	"jury-dashboard/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "jury-dashboard",
	Short: "Jury admin dashboard",
	Long: `Admin dashboard for the jury judging platform.

Serves the project statistics panel, which reads /project/stats from the
jury backend (JURY_URL) with the viewing admin's credentials.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, showCmd, adminCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv reads configuration and initialises the process logger.
func loadEnv() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
