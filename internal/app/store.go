package app

import (
	"context"

	"mission-quiz-service/internal/domain"
)

// Store is the persistence boundary of mission completion and badge awards.
// Implementations must make RunInTx atomic: if fn returns an error nothing it wrote survives.
type Store interface {
	InsertScores(ctx context.Context, scores []domain.Score) error
	GetProgress(ctx context.Context, playerID, missionID string) (domain.Progress, bool, error)
	UpsertProgress(ctx context.Context, progress domain.Progress) error
	ListProgress(ctx context.Context, playerID string) ([]domain.Progress, error)
	// ListBadges returns the player's badges; a non-empty types slice restricts the result.
	ListBadges(ctx context.Context, playerID string, types []domain.BadgeType) ([]domain.Badge, error)
	// InsertBadges appends badges and returns them as stored.
	InsertBadges(ctx context.Context, badges []domain.Badge) ([]domain.Badge, error)
	// UpdatePlayerStatsAndLeaderboard recomputes the player's totals and leaderboard row.
	UpdatePlayerStatsAndLeaderboard(ctx context.Context, playerID string) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// PlayerStore manages player profiles and leaderboard reads.
type PlayerStore interface {
	EnsurePlayer(ctx context.Context, playerID, displayName string) (domain.Player, error)
	GetPlayer(ctx context.Context, playerID string) (domain.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// MissionRepository loads mission content (from cache/backing store).
type MissionRepository interface {
	GetMission(ctx context.Context, missionID string) (domain.Mission, error)
	ListMissions(ctx context.Context) ([]domain.Mission, error)
}

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(playerID string) *Session
	Get(playerID string) (*Session, bool)
	Delete(playerID string)
}

// EventPublisher announces committed completions to other systems.
type EventPublisher interface {
	PublishMissionCompleted(ctx context.Context, event domain.MissionCompletedEvent) error
}
