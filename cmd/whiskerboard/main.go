// Command whiskerboard runs the status board server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bissquit/whiskerboard/internal/app"
	"github.com/bissquit/whiskerboard/internal/config"
	"github.com/bissquit/whiskerboard/internal/pkg/postgres"
	"github.com/bissquit/whiskerboard/internal/version"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("whiskerboard", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", os.Getenv("WHISKERBOARD_CONFIG_FILE"), "Path to a YAML config file.")
	migrateOnly := flags.Bool("migrate-only", false, "Apply PostgreSQL migrations and exit.")
	showVersion := flags.Bool("version", false, "Print version and exit.")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("whiskerboard %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildDate)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if *migrateOnly {
		if cfg.Storage.Backend != config.BackendPostgres {
			return errors.New("--migrate-only requires the postgres backend")
		}
		return postgres.Migrate(cfg.Database.URL)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return application.Shutdown(shutdownCtx)
}
