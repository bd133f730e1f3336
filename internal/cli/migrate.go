package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/nexus-api/internal/config"
	"github.com/noah-isme/nexus-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := database.ConnectPostgres(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}
