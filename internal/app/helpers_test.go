package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/domain"
	"mission-quiz-service/internal/infra/memory"
)

var errBoom = errors.New("boom")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fixtureMission() domain.Mission {
	return domain.Mission{
		ID:         "m1",
		Title:      "Basics",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{ID: "q1", Type: domain.QuestionMultipleChoice, Difficulty: domain.DifficultyEasy, TimeLimit: 30, CorrectAnswer: domain.SingleAnswer("B")},
			{ID: "q2", Type: domain.QuestionTrueFalse, Difficulty: domain.DifficultyMedium, TimeLimit: 20, CorrectAnswer: domain.SingleAnswer("true")},
			{ID: "q3", Type: domain.QuestionDragDrop, Difficulty: domain.DifficultyHard, TimeLimit: 45, CorrectAnswer: domain.OrderedAnswer("i2", "i1")},
			{ID: "q4", Type: domain.QuestionFlashcard, Difficulty: domain.DifficultyEasy, TimeLimit: 15, CorrectAnswer: domain.SingleAnswer("ok")},
		},
	}
}

func correctAnswers() []domain.Answer {
	return []domain.Answer{
		domain.SingleAnswer("B"),
		domain.SingleAnswer("true"),
		domain.OrderedAnswer("i2", "i1"),
		domain.SingleAnswer("ok"),
	}
}

// playThrough answers every question of the session's mission with the given times.
func playThrough(s *app.Session, answers []domain.Answer, times []float64) {
	for i, a := range answers {
		s.SubmitAnswer(a, times[i])
		s.NextQuestion()
	}
}

// failingStore fails one named step inside a transaction.
type failingStore struct {
	*memory.Store
	failOn string
}

func (f *failingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Store) error) error {
	return f.Store.RunInTx(ctx, func(ctx context.Context, tx app.Store) error {
		return fn(ctx, &failingTx{Store: tx, failOn: f.failOn})
	})
}

type failingTx struct {
	app.Store
	failOn string
}

func (f *failingTx) UpsertProgress(ctx context.Context, p domain.Progress) error {
	if f.failOn == "progress" {
		return errBoom
	}
	return f.Store.UpsertProgress(ctx, p)
}

func (f *failingTx) InsertBadges(ctx context.Context, badges []domain.Badge) ([]domain.Badge, error) {
	if f.failOn == "badges" {
		return nil, errBoom
	}
	return f.Store.InsertBadges(ctx, badges)
}

func (f *failingTx) UpdatePlayerStatsAndLeaderboard(ctx context.Context, playerID string) error {
	if f.failOn == "stats" {
		return errBoom
	}
	return f.Store.UpdatePlayerStatsAndLeaderboard(ctx, playerID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.MissionCompletedEvent
	err    error
}

func (p *recordingPublisher) PublishMissionCompleted(_ context.Context, event domain.MissionCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
