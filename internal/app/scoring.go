package app

import (
	"math"

	"mission-quiz-service/internal/domain"
)

const (
	maxTimeBonus    = 15
	streakBonusRate = 2
)

// BasePoints is the reward for a correct answer before bonuses.
func BasePoints(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 10
	case domain.DifficultyMedium:
		return 15
	case domain.DifficultyHard:
		return 20
	}
	return 0
}

// DifficultyBonus is the record-keeping bonus stored on score rows; it never feeds mission totals.
func DifficultyBonus(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 0
	case domain.DifficultyMedium:
		return 5
	case domain.DifficultyHard:
		return 10
	}
	return 0
}

// TimeBonus rewards speed in whole seconds: 15 at zero, one less per elapsed second, never negative.
func TimeBonus(timeSpent float64) int {
	if math.IsNaN(timeSpent) || timeSpent >= maxTimeBonus {
		return 0
	}
	if timeSpent < 0 {
		timeSpent = 0
	}
	return maxTimeBonus - int(math.Floor(timeSpent))
}

// CalculatePoints scores one answer. Incorrect answers are worth nothing.
func CalculatePoints(correct bool, timeSpent float64, difficulty domain.Difficulty, streak int) int {
	if !correct {
		return 0
	}
	return BasePoints(difficulty) + TimeBonus(timeSpent) + streak*streakBonusRate
}
