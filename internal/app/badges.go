package app

import (
	"context"
	"fmt"
	"time"

	"mission-quiz-service/internal/domain"
)

const (
	streakWindow     = 3
	geniusTimeCutoff = 5.0 // seconds
)

// EvaluateBadges decides which badges a finished play-through qualifies for.
// completedMissions is the number of progress rows the player has after this completion.
func EvaluateBadges(answers []domain.AnswerRecord, completedMissions int) []domain.BadgeType {
	var earned []domain.BadgeType

	if completedMissions == 1 {
		earned = append(earned, domain.BadgeFirstMission)
	}
	if hasCorrectRun(answers, streakWindow) {
		earned = append(earned, domain.BadgeStreak3)
	}
	if len(answers) > 0 && allCorrect(answers) {
		earned = append(earned, domain.BadgePerfectMission, domain.BadgeFlawlessTheme)
	}
	for _, a := range answers {
		if a.Correct && a.TimeSpent < geniusTimeCutoff {
			earned = append(earned, domain.BadgeGeniusIdea)
			break
		}
	}
	return earned
}

func hasCorrectRun(answers []domain.AnswerRecord, n int) bool {
	run := 0
	for _, a := range answers {
		if !a.Correct {
			run = 0
			continue
		}
		run++
		if run >= n {
			return true
		}
	}
	return false
}

func allCorrect(answers []domain.AnswerRecord) bool {
	for _, a := range answers {
		if !a.Correct {
			return false
		}
	}
	return true
}

// CheckForBadges evaluates the session's answers and persists badges the player does not own yet.
// It is a no-op without a player or a mission. Newly stored badges become the session's earned badges.
func (p *MissionProcessor) CheckForBadges(ctx context.Context, s *Session) ([]domain.Badge, error) {
	player, ok := s.Player()
	if !ok || s.MissionID() == "" {
		return nil, nil
	}
	inserted, err := awardBadges(ctx, p.store, player.ID, s.MissionID(), s.answers, s.now())
	if err != nil {
		return nil, err
	}
	if len(inserted) > 0 {
		s.earnedBadges = inserted
	}
	return inserted, nil
}

func awardBadges(ctx context.Context, store Store, playerID, missionID string, answers []domain.AnswerRecord, now time.Time) ([]domain.Badge, error) {
	progress, err := store.ListProgress(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	candidates := EvaluateBadges(answers, len(progress))
	if len(candidates) == 0 {
		return nil, nil
	}

	owned, err := store.ListBadges(ctx, playerID, candidates)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	have := make(map[domain.BadgeType]struct{}, len(owned))
	for _, b := range owned {
		have[b.Type] = struct{}{}
	}

	var fresh []domain.Badge
	for _, t := range candidates {
		if _, ok := have[t]; ok {
			continue
		}
		fresh = append(fresh, domain.Badge{
			PlayerID: playerID,
			Type:     t,
			Data:     domain.BadgeData{MissionID: missionID},
			EarnedAt: now,
		})
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	inserted, err := store.InsertBadges(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("insert badges: %w", err)
	}
	return inserted, nil
}
