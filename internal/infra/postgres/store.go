package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/domain"
)

var (
	_ app.Store       = (*Store)(nil)
	_ app.PlayerStore = (*Store)(nil)
)

// Store persists scores, progress, badges and players with bun.
// A Store returned inside RunInTx runs every query on that transaction.
type Store struct {
	db    *bun.DB
	idb   bun.IDB
	inTx  bool
	clock func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, idb: db, clock: time.Now}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: s.db, idb: tx, inTx: true, clock: s.clock})
	})
}

func (s *Store) InsertScores(ctx context.Context, scores []domain.Score) error {
	if len(scores) == 0 {
		return nil
	}
	models := make([]scoreModel, 0, len(scores))
	for _, sc := range scores {
		createdAt := sc.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.clock()
		}
		models = append(models, scoreModel{
			ID:              uuid.NewString(),
			PlayerID:        sc.PlayerID,
			MissionID:       sc.MissionID,
			Points:          sc.Points,
			TimeBonus:       sc.TimeBonus,
			DifficultyBonus: sc.DifficultyBonus,
			StreakBonus:     sc.StreakBonus,
			CreatedAt:       createdAt,
		})
	}
	if _, err := s.idb.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("insert scores: %w", err)
	}
	return nil
}

func (s *Store) GetProgress(ctx context.Context, playerID, missionID string) (domain.Progress, bool, error) {
	var m progressModel
	err := s.idb.NewSelect().
		Model(&m).
		Where("player_id = ?", playerID).
		Where("mission_id = ?", missionID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, false, nil
	}
	if err != nil {
		return domain.Progress{}, false, fmt.Errorf("select progress: %w", err)
	}
	return m.toDomain(), true, nil
}

func (s *Store) UpsertProgress(ctx context.Context, p domain.Progress) error {
	m := progressModel{
		PlayerID:     p.PlayerID,
		MissionID:    p.MissionID,
		Completed:    p.Completed,
		Score:        p.Score,
		TimeSpent:    p.TimeSpent,
		Attempts:     p.Attempts,
		PerfectScore: p.PerfectScore,
		UpdatedAt:    s.clock(),
	}
	_, err := s.idb.NewInsert().
		Model(&m).
		On("CONFLICT (player_id, mission_id) DO UPDATE").
		Set("completed = EXCLUDED.completed").
		Set("score = EXCLUDED.score").
		Set("time_spent = EXCLUDED.time_spent").
		Set("attempts = EXCLUDED.attempts").
		Set("perfect_score = EXCLUDED.perfect_score").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *Store) ListProgress(ctx context.Context, playerID string) ([]domain.Progress, error) {
	var models []progressModel
	err := s.idb.NewSelect().
		Model(&models).
		Where("player_id = ?", playerID).
		Order("mission_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	out := make([]domain.Progress, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *Store) ListBadges(ctx context.Context, playerID string, types []domain.BadgeType) ([]domain.Badge, error) {
	var models []badgeModel
	q := s.idb.NewSelect().
		Model(&models).
		Where("player_id = ?", playerID).
		Order("earned_at ASC")
	if len(types) > 0 {
		q = q.Where("badge_type IN (?)", bun.In(types))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select badges: %w", err)
	}
	out := make([]domain.Badge, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *Store) InsertBadges(ctx context.Context, badges []domain.Badge) ([]domain.Badge, error) {
	if len(badges) == 0 {
		return nil, nil
	}
	models := make([]badgeModel, 0, len(badges))
	for _, b := range badges {
		earnedAt := b.EarnedAt
		if earnedAt.IsZero() {
			earnedAt = s.clock()
		}
		models = append(models, badgeModel{
			ID:       uuid.NewString(),
			PlayerID: b.PlayerID,
			Type:     b.Type,
			Data:     b.Data,
			EarnedAt: earnedAt,
		})
	}
	if _, err := s.idb.NewInsert().Model(&models).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert badges: %w", err)
	}
	out := make([]domain.Badge, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// UpdatePlayerStatsAndLeaderboard runs the server-side aggregation function.
func (s *Store) UpdatePlayerStatsAndLeaderboard(ctx context.Context, playerID string) error {
	if _, err := s.idb.ExecContext(ctx, "SELECT update_player_stats_and_leaderboard(?)", playerID); err != nil {
		return fmt.Errorf("update player stats: %w", err)
	}
	return nil
}

// EnsurePlayer returns the player, creating an anonymous one on first sight.
// A non-empty displayName renames an existing player.
func (s *Store) EnsurePlayer(ctx context.Context, playerID, displayName string) (domain.Player, error) {
	if playerID == "" {
		playerID = uuid.NewString()
	}
	now := s.clock()
	name := displayName
	if name == "" {
		name = "Player " + playerID[:min(8, len(playerID))]
	}
	m := playerModel{
		ID:          playerID,
		DisplayName: name,
		IsAnonymous: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q := s.idb.NewInsert().Model(&m)
	if displayName != "" {
		q = q.On("CONFLICT (id) DO UPDATE").
			Set("display_name = EXCLUDED.display_name").
			Set("updated_at = EXCLUDED.updated_at")
	} else {
		q = q.On("CONFLICT (id) DO NOTHING")
	}
	if _, err := q.Exec(ctx); err != nil {
		return domain.Player{}, fmt.Errorf("ensure player: %w", err)
	}
	return s.GetPlayer(ctx, playerID)
}

func (s *Store) GetPlayer(ctx context.Context, playerID string) (domain.Player, error) {
	var m playerModel
	err := s.idb.NewSelect().Model(&m).Where("id = ?", playerID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("select player: %w", err)
	}
	return m.toDomain(), nil
}

// Leaderboard returns the top entries by total score, then missions completed, then name.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var models []leaderboardModel
	q := s.idb.NewSelect().
		Model(&models).
		Order("total_score DESC", "missions_completed DESC", "display_name ASC", "player_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	out := make([]domain.LeaderboardEntry, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
