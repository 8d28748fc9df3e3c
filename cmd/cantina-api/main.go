// main is the entry point of the canteen API.
//
// Commands:
//
//	cantina-api serve   --config=config/local.yaml   # run the HTTP server
//	cantina-api migrate --config=config/local.yaml   # create the tables and exit
//
// The config path may also come from the CONFIG_PATH environment variable.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/cantina-api/internal/config"
	"github.com/aanand-mishra/cantina-api/internal/storage/postgres"
	"github.com/aanand-mishra/cantina-api/internal/storage/sqldb"
	"github.com/aanand-mishra/cantina-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:           "cantina-api",
		Short:         "School canteen consumption tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the configuration YAML file (or set CONFIG_PATH)")

	root.AddCommand(newServeCommand(&configPath), newMigrateCommand(&configPath))

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// openStorage connects to the backend named in cfg and makes sure the
// schema exists. The result satisfies storage.Storage.
func openStorage(cfg *config.Config) (*sqldb.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverPostgres:
		return postgres.New(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
