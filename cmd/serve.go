package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/safebadge/internal/api"
	"github.com/jon4hz/safebadge/internal/config"
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/jon4hz/safebadge/internal/database/memory"
	"github.com/jon4hz/safebadge/internal/engine"
	"github.com/jon4hz/safebadge/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the safebadge server",
	Long:  `Start the safebadge API server together with the device simulation.`,
	Example: `safebadge serve --config config.yml
safebadge serve -c /path/to/config.yml --log-level debug
`,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openDatabase(cfg *config.DatabaseConfig) (database.DB, error) {
	switch cfg.Type {
	case config.DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		client, err := database.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DatabaseTypeMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	m := metrics.New()

	eng, err := engine.New(cfg, db, engine.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if _, err := eng.EnsureDemoUser(cmd.Context()); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	server, err := api.New(cfg, eng, m, log.GetLevel() == log.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		if err := eng.Run(ctx); err != nil {
			return fmt.Errorf("engine error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return server.Run(ctx)
	})

	log.Info("safebadge started successfully", "listen", cfg.Listen, "database", cfg.Database.Type)
	err = g.Wait()

	log.Info("shutting down gracefully...")
	if closeErr := eng.Close(); closeErr != nil {
		log.Error("failed to stop engine", "error", closeErr)
	}
	return err
}
