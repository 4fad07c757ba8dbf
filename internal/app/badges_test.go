package app

import (
	"reflect"
	"testing"

	"mission-quiz-service/internal/domain"
)

func records(times []float64, correct ...bool) []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, len(correct))
	for i, c := range correct {
		out[i] = domain.AnswerRecord{QuestionID: "q", Correct: c, TimeSpent: times[i]}
	}
	return out
}

func TestEvaluateBadges(t *testing.T) {
	tests := []struct {
		name      string
		answers   []domain.AnswerRecord
		completed int
		want      []domain.BadgeType
	}{
		{
			name:      "perfect slow run",
			answers:   records([]float64{5, 6, 9}, true, true, true),
			completed: 2,
			want:      []domain.BadgeType{domain.BadgeStreak3, domain.BadgePerfectMission, domain.BadgeFlawlessTheme},
		},
		{
			name:      "perfect run with a quick answer",
			answers:   records([]float64{5, 4, 9}, true, true, true),
			completed: 2,
			want:      []domain.BadgeType{domain.BadgeStreak3, domain.BadgePerfectMission, domain.BadgeFlawlessTheme, domain.BadgeGeniusIdea},
		},
		{
			name:      "first mission with a broken streak",
			answers:   records([]float64{7, 7, 7, 7}, true, true, false, true),
			completed: 1,
			want:      []domain.BadgeType{domain.BadgeFirstMission},
		},
		{
			name:      "quick wrong answer earns nothing",
			answers:   records([]float64{1}, false),
			completed: 3,
			want:      nil,
		},
		{
			name:      "streak window anywhere in the run",
			answers:   records([]float64{9, 9, 9, 9, 9}, false, true, true, true, false),
			completed: 3,
			want:      []domain.BadgeType{domain.BadgeStreak3},
		},
		{
			name:      "no answers is not perfect",
			answers:   nil,
			completed: 1,
			want:      []domain.BadgeType{domain.BadgeFirstMission},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateBadges(tt.answers, tt.completed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluateBadgesNeverAwardsSpeedMaster(t *testing.T) {
	got := EvaluateBadges(records([]float64{0, 0, 0}, true, true, true), 1)
	for _, b := range got {
		if b == domain.BadgeSpeedMaster {
			t.Fatalf("speed_master has no awarding rule")
		}
	}
}
