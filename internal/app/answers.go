package app

import (
	"strings"

	"mission-quiz-service/internal/domain"
)

// CheckAnswer compares a submission with the canonical answer. Ordered answers must match
// element for element in order; single answers match case-insensitively after trimming.
// Any shape mismatch is simply incorrect.
func CheckAnswer(given, correct domain.Answer) bool {
	switch correct.Kind() {
	case domain.AnswerOrdered:
		want, _ := correct.Ordered()
		got, ok := given.Ordered()
		if !ok || len(got) != len(want) {
			return false
		}
		for i := range want {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	case domain.AnswerSingle:
		want, _ := correct.Single()
		got, ok := given.Single()
		if !ok {
			return false
		}
		return strings.ToLower(strings.TrimSpace(got)) == strings.ToLower(strings.TrimSpace(want))
	}
	return false
}
