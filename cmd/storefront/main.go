package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string

	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Multi-tenant storefront backend",
	Long: `storefront serves the catalog, cart, checkout, orders and admin
back-office over HTTP, plus an internal gRPC CartService.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = setupLogger(logLevel, os.Getenv("GIN_MODE"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(level, ginMode string) *logrus.Logger {
	logger := logrus.New()
	if strings.EqualFold(ginMode, "release") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// loadConfig reads the configuration and applies its log level unless the
// flag was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") {
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
			logger.Warnf("Invalid log level '%s' in config, keeping '%s'. Error: %v", cfg.LogLevel, logger.GetLevel(), err)
		} else {
			logger.SetLevel(lvl)
		}
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
