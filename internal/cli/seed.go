package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/nexus-api/internal/config"
	"github.com/noah-isme/nexus-api/internal/database"
	"github.com/noah-isme/nexus-api/internal/repository"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/syllabus"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default syllabus records when none exist",
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

			catalog, err := syllabus.Load()
			if err != nil {
				return err
			}

			svc := service.NewSyllabusService(repository.NewSyllabusRepository(db), catalog, nil, cfg.UploadMaxSizeMB, logger)
			created, err := svc.Seed(cmd.Context())
			if err != nil {
				return err
			}

			logger.Info().Int("created", created).Msg("syllabus seed complete")
			return nil
		},
	}
}
