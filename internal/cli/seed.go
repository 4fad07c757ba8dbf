package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mission-quiz-service/internal/catalog"
	pgstore "mission-quiz-service/internal/infra/postgres"
)

// NewSeedMissionsCmd loads a mission catalog into Postgres.
func NewSeedMissionsCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-missions",
		Short: "Upsert the mission catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			c, err := loadCatalog(file)
			if err != nil {
				return err
			}

			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrateDB(cmd.Context(), db, log); err != nil {
				return err
			}
			n, err := pgstore.SeedMissions(cmd.Context(), db, c.Missions())
			if err != nil {
				return err
			}
			log.Info("missions seeded", "count", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML catalog to seed instead of the embedded one")
	return cmd
}

func loadCatalog(file string) (*catalog.Catalog, error) {
	if file == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return catalog.Parse(data)
}
