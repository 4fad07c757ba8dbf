package app

import (
	"context"
	"fmt"

	"mission-quiz-service/internal/domain"
)

// MissionProcessor turns a finished session into persisted scores, progress and badges.
type MissionProcessor struct {
	store Store
}

func NewMissionProcessor(store Store) *MissionProcessor {
	return &MissionProcessor{store: store}
}

// CompleteMission scores the session's answers and persists the outcome in one transaction:
// score rows, the progress upsert, new badges and the leaderboard recompute. It returns a nil
// result without error when the session has no player or no mission. Persistence errors are
// returned as-is (wrapped); on error nothing from this completion is persisted.
//
// The mission total applies the session's final streak to every correct answer, while the
// stored score rows record a zero streak bonus.
func (p *MissionProcessor) CompleteMission(ctx context.Context, s *Session) (*domain.MissionResult, error) {
	player, ok := s.Player()
	if !ok {
		return nil, nil
	}
	mission, ok := s.Mission()
	if !ok || mission.ID == "" {
		return nil, nil
	}

	now := s.now()
	answers := s.Answers()
	streak := s.streak

	total := 0
	scores := make([]domain.Score, 0, len(answers))
	for _, a := range answers {
		q, found := mission.Question(a.QuestionID)
		if !found || !a.Correct {
			continue
		}
		points := CalculatePoints(a.Correct, a.TimeSpent, q.Difficulty, streak)
		total += points
		scores = append(scores, domain.Score{
			PlayerID:        player.ID,
			MissionID:       mission.ID,
			Points:          points,
			TimeBonus:       TimeBonus(a.TimeSpent),
			DifficultyBonus: DifficultyBonus(q.Difficulty),
			StreakBonus:     0,
			CreatedAt:       now,
		})
	}
	s.lastMissionScore = total

	progress := domain.Progress{
		PlayerID:     player.ID,
		MissionID:    mission.ID,
		Completed:    true,
		Score:        total,
		TimeSpent:    now.Sub(s.startTime).Milliseconds(),
		PerfectScore: allCorrect(answers),
	}

	var badges []domain.Badge
	err := p.store.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		if len(scores) > 0 {
			if err := tx.InsertScores(ctx, scores); err != nil {
				return fmt.Errorf("insert scores: %w", err)
			}
		}

		existing, found, err := tx.GetProgress(ctx, player.ID, mission.ID)
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		progress.Attempts = 1
		if found {
			progress.Attempts = existing.Attempts + 1
		}
		if err := tx.UpsertProgress(ctx, progress); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		badges, err = awardBadges(ctx, tx, player.ID, mission.ID, answers, now)
		if err != nil {
			return err
		}

		if err := tx.UpdatePlayerStatsAndLeaderboard(ctx, player.ID); err != nil {
			return fmt.Errorf("update player stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(badges) > 0 {
		s.earnedBadges = badges
	}
	s.completed = true

	return &domain.MissionResult{
		MissionID:    mission.ID,
		Score:        total,
		Perfect:      progress.PerfectScore,
		Attempts:     progress.Attempts,
		TimeSpent:    progress.TimeSpent,
		EarnedBadges: s.EarnedBadges(),
	}, nil
}
