package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/cantina-api/internal/config"
)

// newMigrateCommand creates the schema without starting the server, for
// deployments that prepare the database in a separate step. A bad config
// is fatal here: there is nothing to shut down yet.
func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad(*configPath)
			log := setupLogger(cfg.Env)

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			log.Info("schema is up to date", slog.String("driver", cfg.Storage.Driver))
			return nil
		},
	}
}
