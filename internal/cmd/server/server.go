// Package server parses configuration for the prysma server binary.
package server

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prysma/prysma/internal/app"
	"github.com/prysma/prysma/internal/platform/config"
	"github.com/prysma/prysma/internal/platform/logging"
	"github.com/prysma/prysma/internal/platform/otel"
	"go.uber.org/zap"
)

// Config holds server command configuration.
type Config struct {
	HTTPAddr string
	DBPath   string
	AdminKey string
	Verbose  bool
}

type envConfig struct {
	HTTPAddr string `env:"PRYSMA_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath   string `env:"PRYSMA_DB_PATH"`
	AdminKey string `env:"PRYSMA_ADMIN_API_KEY"`
	Verbose  bool   `env:"PRYSMA_VERBOSE"`
}

// ParseConfig parses flags into a Config, with env fallbacks.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPAddr: envCfg.HTTPAddr,
		DBPath:   envCfg.DBPath,
		AdminKey: envCfg.AdminKey,
		Verbose:  envCfg.Verbose,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "prysma.db")
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (default: PRYSMA_HTTP_ADDR or localhost:8080)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database (default: PRYSMA_DB_PATH or data/prysma.db)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the server.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := otel.Setup(ctx, "prysma")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	return app.Run(ctx, app.Config{
		HTTPAddr: cfg.HTTPAddr,
		DBPath:   cfg.DBPath,
		AdminKey: cfg.AdminKey,
		Logger:   logger,
	})
}
