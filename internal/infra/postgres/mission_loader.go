package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"mission-quiz-service/internal/domain"
)

// MissionLoader loads mission JSONB from Postgres.
type MissionLoader struct {
	pool *pgxpool.Pool
}

func NewMissionLoader(pool *pgxpool.Pool) *MissionLoader {
	return &MissionLoader{pool: pool}
}

func (l *MissionLoader) LoadMission(ctx context.Context, missionID string) (domain.Mission, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM missions WHERE id=$1`, missionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Mission{}, domain.ErrMissionNotFound
	}
	if err != nil {
		return domain.Mission{}, fmt.Errorf("load mission: %w", err)
	}
	var mission domain.Mission
	if err := json.Unmarshal(raw, &mission); err != nil {
		return domain.Mission{}, fmt.Errorf("unmarshal mission: %w", err)
	}
	return mission, nil
}

// LoadMissions returns every mission ordered by catalog position.
func (l *MissionLoader) LoadMissions(ctx context.Context) ([]domain.Mission, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM missions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		var mission domain.Mission
		if err := json.Unmarshal(raw, &mission); err != nil {
			return nil, fmt.Errorf("unmarshal mission: %w", err)
		}
		missions = append(missions, mission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	return missions, nil
}
