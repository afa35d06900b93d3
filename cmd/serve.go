package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minervahq/minerva/internal/app"
	"github.com/minervahq/minerva/internal/config"
	"github.com/minervahq/minerva/internal/log"
)

var serveDebug bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes the application and serves HTTP until interrupted.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	level := slog.LevelInfo
	if serveDebug {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: true})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	logger.Info("HTTP server ready", "addr", addr, "api", "/api/*", "health", "/health, /ready")

	return a.Server().Run(ctx, addr)
}
