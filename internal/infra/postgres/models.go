package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"mission-quiz-service/internal/domain"
)

type missionModel struct {
	bun.BaseModel `bun:"table:missions,alias:m"`

	ID        string         `bun:"id,pk"`
	Position  int            `bun:"position,notnull"`
	Data      domain.Mission `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

type playerModel struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID          string    `bun:"id,pk"`
	DisplayName string    `bun:"display_name,notnull"`
	IsAnonymous bool      `bun:"is_anonymous,notnull"`
	TotalPoints int       `bun:"total_points,notnull"`
	TotalBadges int       `bun:"total_badges,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (m playerModel) toDomain() domain.Player {
	return domain.Player{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		IsAnonymous: m.IsAnonymous,
		TotalPoints: m.TotalPoints,
		TotalBadges: m.TotalBadges,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type scoreModel struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID              string    `bun:"id,pk,type:uuid"`
	PlayerID        string    `bun:"player_id,notnull"`
	MissionID       string    `bun:"mission_id,notnull"`
	Points          int       `bun:"points,notnull"`
	TimeBonus       int       `bun:"time_bonus,notnull"`
	DifficultyBonus int       `bun:"difficulty_bonus,notnull"`
	StreakBonus     int       `bun:"streak_bonus,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

type progressModel struct {
	bun.BaseModel `bun:"table:player_progress,alias:pp"`

	PlayerID     string    `bun:"player_id,pk"`
	MissionID    string    `bun:"mission_id,pk"`
	Completed    bool      `bun:"completed,notnull"`
	Score        int       `bun:"score,notnull"`
	TimeSpent    int64     `bun:"time_spent,notnull"` // ms
	Attempts     int       `bun:"attempts,notnull"`
	PerfectScore bool      `bun:"perfect_score,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (m progressModel) toDomain() domain.Progress {
	return domain.Progress{
		PlayerID:     m.PlayerID,
		MissionID:    m.MissionID,
		Completed:    m.Completed,
		Score:        m.Score,
		TimeSpent:    m.TimeSpent,
		Attempts:     m.Attempts,
		PerfectScore: m.PerfectScore,
	}
}

type badgeModel struct {
	bun.BaseModel `bun:"table:badges,alias:b"`

	ID       string           `bun:"id,pk,type:uuid"`
	PlayerID string           `bun:"player_id,notnull"`
	Type     domain.BadgeType `bun:"badge_type,notnull"`
	Data     domain.BadgeData `bun:"badge_data,type:jsonb,notnull"`
	EarnedAt time.Time        `bun:"earned_at,notnull"`
}

func (m badgeModel) toDomain() domain.Badge {
	return domain.Badge{
		ID:       m.ID,
		PlayerID: m.PlayerID,
		Type:     m.Type,
		Data:     m.Data,
		EarnedAt: m.EarnedAt,
	}
}

type leaderboardModel struct {
	bun.BaseModel `bun:"table:leaderboard,alias:lb"`

	PlayerID          string    `bun:"player_id,pk"`
	DisplayName       string    `bun:"display_name,notnull"`
	IsAnonymous       bool      `bun:"is_anonymous,notnull"`
	TotalScore        int       `bun:"total_score,notnull"`
	MissionsCompleted int       `bun:"missions_completed,notnull"`
	AverageTime       int64     `bun:"average_time,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

func (m leaderboardModel) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		PlayerID:          m.PlayerID,
		DisplayName:       m.DisplayName,
		IsAnonymous:       m.IsAnonymous,
		TotalScore:        m.TotalScore,
		MissionsCompleted: m.MissionsCompleted,
		AverageTime:       m.AverageTime,
		UpdatedAt:         m.UpdatedAt,
	}
}
