package app

import (
	"context"

	"mission-quiz-service/internal/domain"
	"mission-quiz-service/internal/platform/logger"
)

// GameService contains the per-player play use cases. It serializes calls per player
// and maps the core's neutral no-ops to sentinel errors for clients.
type GameService struct {
	sessions  SessionRepository
	missions  MissionRepository
	store     Store
	players   PlayerStore
	events    EventPublisher
	processor *MissionProcessor
	log       *logger.Logger
}

// NewGameService wires the use cases. events may be nil.
func NewGameService(sessions SessionRepository, missions MissionRepository, store Store, players PlayerStore, events EventPublisher, log *logger.Logger) *GameService {
	if log == nil {
		log = logger.Nop()
	}
	return &GameService{
		sessions:  sessions,
		missions:  missions,
		store:     store,
		players:   players,
		events:    events,
		processor: NewMissionProcessor(store),
		log:       log,
	}
}

// Login ensures the player exists and binds it to the player's session.
func (g *GameService) Login(ctx context.Context, playerID, displayName string) (domain.Player, error) {
	player, err := g.players.EnsurePlayer(ctx, playerID, displayName)
	if err != nil {
		return domain.Player{}, err
	}
	session := g.sessions.GetOrCreate(player.ID)
	session.mu.Lock()
	defer session.mu.Unlock()
	session.SetPlayer(player)
	return player, nil
}

// StartMission begins (or restarts) a mission and returns its first question.
func (g *GameService) StartMission(ctx context.Context, playerID, missionID string) (domain.QuestionView, error) {
	session, ok := g.sessions.Get(playerID)
	if !ok {
		return domain.QuestionView{}, domain.ErrSessionNotFound
	}
	mission, err := g.missions.GetMission(ctx, missionID)
	if err != nil {
		return domain.QuestionView{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if _, ok := session.Player(); !ok {
		return domain.QuestionView{}, domain.ErrNotLoggedIn
	}
	session.StartMission(mission)
	g.log.Info("mission started", "player_id", playerID, "mission_id", missionID)

	view, ok := session.View()
	if !ok {
		return domain.QuestionView{}, domain.ErrNoActiveMission
	}
	return view, nil
}

// SubmitAnswer grades an answer to the current question. Points are the live estimate,
// using the streak as it stood before this answer.
func (g *GameService) SubmitAnswer(_ context.Context, playerID string, answer domain.Answer, timeSpent float64) (domain.AnswerResult, error) {
	session, ok := g.sessions.Get(playerID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if _, ok := session.Player(); !ok {
		return domain.AnswerResult{}, domain.ErrNotLoggedIn
	}
	if session.State() == StateMissionComplete {
		return domain.AnswerResult{}, domain.ErrMissionAlreadyCompleted
	}
	q, ok := session.CurrentQuestion()
	if !ok {
		return domain.AnswerResult{}, domain.ErrNoActiveMission
	}
	if session.Answered() {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	before := session.Streak()
	correct := session.SubmitAnswer(answer, timeSpent)
	return domain.AnswerResult{
		QuestionID:  q.ID,
		Correct:     correct,
		Points:      CalculatePoints(correct, timeSpent, q.Difficulty, before),
		Streak:      session.Streak(),
		Explanation: q.Explanation,
		IsLast:      session.IsLastQuestion(),
	}, nil
}

// NextQuestion advances and returns the question now current.
func (g *GameService) NextQuestion(_ context.Context, playerID string) (domain.QuestionView, error) {
	session, ok := g.sessions.Get(playerID)
	if !ok {
		return domain.QuestionView{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.NextQuestion()
	view, ok := session.View()
	if !ok {
		return domain.QuestionView{}, domain.ErrNoActiveMission
	}
	return view, nil
}

// CompleteMission finalizes the current play-through once.
func (g *GameService) CompleteMission(ctx context.Context, playerID string) (domain.MissionResult, error) {
	session, ok := g.sessions.Get(playerID)
	if !ok {
		return domain.MissionResult{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	switch session.State() {
	case StateIdle:
		return domain.MissionResult{}, domain.ErrNoActiveMission
	case StateMissionComplete:
		return domain.MissionResult{}, domain.ErrMissionAlreadyCompleted
	}

	result, err := g.processor.CompleteMission(ctx, session)
	if err != nil {
		g.log.Error("complete mission failed", "player_id", playerID, "mission_id", session.MissionID(), "error", err)
		return domain.MissionResult{}, err
	}
	if result == nil {
		return domain.MissionResult{}, domain.ErrNotLoggedIn
	}

	badgeTypes := make([]domain.BadgeType, 0, len(result.EarnedBadges))
	for _, b := range result.EarnedBadges {
		badgeTypes = append(badgeTypes, b.Type)
	}
	g.log.Info("mission completed",
		"player_id", playerID,
		"mission_id", result.MissionID,
		"score", result.Score,
		"perfect", result.Perfect,
		"badges", badgeTypes,
	)

	if g.events != nil {
		event := domain.MissionCompletedEvent{
			PlayerID:    playerID,
			MissionID:   result.MissionID,
			Score:       result.Score,
			Perfect:     result.Perfect,
			Attempts:    result.Attempts,
			Badges:      badgeTypes,
			CompletedAt: session.now(),
		}
		if err := g.events.PublishMissionCompleted(ctx, event); err != nil {
			g.log.Warn("publish mission completed failed", "player_id", playerID, "error", err)
		}
	}
	return *result, nil
}

// Reset drops the player's session entirely.
func (g *GameService) Reset(_ context.Context, playerID string) {
	session, ok := g.sessions.Get(playerID)
	if !ok {
		return
	}
	session.mu.Lock()
	session.ResetGame()
	session.mu.Unlock()
	g.sessions.Delete(playerID)
}

// Missions lists catalog metadata in catalog order.
func (g *GameService) Missions(ctx context.Context) ([]domain.MissionSummary, error) {
	missions, err := g.missions.ListMissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MissionSummary, 0, len(missions))
	for _, m := range missions {
		out = append(out, m.Summary())
	}
	return out, nil
}

func (g *GameService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := g.players.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}

func (g *GameService) PlayerBadges(ctx context.Context, playerID string) ([]domain.Badge, error) {
	if _, err := g.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	badges, err := g.store.ListBadges(ctx, playerID, nil)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []domain.Badge{}
	}
	return badges, nil
}

func (g *GameService) PlayerProgress(ctx context.Context, playerID string) ([]domain.Progress, error) {
	if _, err := g.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	progress, err := g.store.ListProgress(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []domain.Progress{}
	}
	return progress, nil
}
