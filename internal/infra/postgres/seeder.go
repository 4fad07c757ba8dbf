package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"mission-quiz-service/internal/domain"
)

// DB is the bun handle the seeding helpers accept (*bun.DB or bun.Tx).
type DB = bun.IDB

// CountMissions returns the number of stored missions.
func CountMissions(ctx context.Context, db DB) (int, error) {
	n, err := db.NewSelect().Model((*missionModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	return n, nil
}

// SeedMissions upserts the given missions into the missions table, keeping their order.
func SeedMissions(ctx context.Context, db DB, missions []domain.Mission) (int, error) {
	if len(missions) == 0 {
		return 0, nil
	}
	now := time.Now()
	models := make([]missionModel, 0, len(missions))
	for i, m := range missions {
		models = append(models, missionModel{
			ID:        m.ID,
			Position:  i,
			Data:      m,
			UpdatedAt: now,
		})
	}
	_, err := db.NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed missions: %w", err)
	}
	return len(models), nil
}
