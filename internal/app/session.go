package app

import (
	"math"
	"sync"
	"time"

	"mission-quiz-service/internal/domain"
)

// SessionState is the lifecycle phase of a play-through.
type SessionState int

const (
	StateIdle SessionState = iota
	StateMissionActive
	StateMissionComplete
)

func (s SessionState) String() string {
	switch s {
	case StateMissionActive:
		return "mission_active"
	case StateMissionComplete:
		return "mission_complete"
	}
	return "idle"
}

// Session is the per-player play-through state. It is not safe for concurrent use;
// callers serialize access (GameService holds mu while driving it).
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	player           *domain.Player
	mission          *domain.Mission
	questionIndex    int
	streak           int
	startTime        time.Time
	answers          []domain.AnswerRecord
	earnedBadges     []domain.Badge
	lastMissionScore int
	completed        bool
}

// NewSession returns an idle session.
func NewSession() *Session {
	return NewSessionWithClock(time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(now func() time.Time) *Session {
	return &Session{
		now:          now,
		answers:      []domain.AnswerRecord{},
		earnedBadges: []domain.Badge{},
	}
}

// SetPlayer binds the logged-in player.
func (s *Session) SetPlayer(p domain.Player) {
	s.player = &p
}

func (s *Session) Player() (domain.Player, bool) {
	if s.player == nil {
		return domain.Player{}, false
	}
	return *s.player, true
}

// StartMission resets all play-through state and starts the given mission.
// The player binding survives.
func (s *Session) StartMission(m domain.Mission) {
	s.mission = &m
	s.questionIndex = 0
	s.streak = 0
	s.startTime = s.now()
	s.answers = []domain.AnswerRecord{}
	s.earnedBadges = []domain.Badge{}
	s.lastMissionScore = 0
	s.completed = false
}

// ResetGame returns the session to its idle default, dropping the player too.
func (s *Session) ResetGame() {
	s.player = nil
	s.mission = nil
	s.questionIndex = 0
	s.streak = 0
	s.startTime = time.Time{}
	s.answers = []domain.AnswerRecord{}
	s.earnedBadges = []domain.Badge{}
	s.lastMissionScore = 0
	s.completed = false
}

func (s *Session) State() SessionState {
	switch {
	case s.mission == nil:
		return StateIdle
	case s.completed:
		return StateMissionComplete
	}
	return StateMissionActive
}

// Mission returns the mission being played.
func (s *Session) Mission() (domain.Mission, bool) {
	if s.mission == nil {
		return domain.Mission{}, false
	}
	return *s.mission, true
}

func (s *Session) MissionID() string {
	if s.mission == nil {
		return ""
	}
	return s.mission.ID
}

func (s *Session) QuestionIndex() int { return s.questionIndex }

func (s *Session) Streak() int { return s.streak }

func (s *Session) StartTime() time.Time { return s.startTime }

// LastMissionScore is only meaningful after a completion.
func (s *Session) LastMissionScore() int { return s.lastMissionScore }

// Answers returns the recorded answers in submission order.
func (s *Session) Answers() []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *Session) EarnedBadges() []domain.Badge {
	out := make([]domain.Badge, len(s.earnedBadges))
	copy(out, s.earnedBadges)
	return out
}

// CurrentQuestion is the mission question at the current index.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.mission == nil || s.questionIndex < 0 || s.questionIndex >= len(s.mission.Questions) {
		return domain.Question{}, false
	}
	return s.mission.Questions[s.questionIndex], true
}

func (s *Session) IsLastQuestion() bool {
	if s.mission == nil {
		return false
	}
	return s.questionIndex == len(s.mission.Questions)-1
}

// Answered reports whether the current question already has a recorded answer.
func (s *Session) Answered() bool {
	return len(s.answers) > s.questionIndex
}

// SubmitAnswer grades an answer to the current question, updates the streak and records it.
// It returns false without recording anything when there is no player, no current question,
// or the current question was already answered. It never advances the question index.
// Negative elapsed times are recorded as zero.
func (s *Session) SubmitAnswer(answer domain.Answer, timeSpent float64) bool {
	q, ok := s.CurrentQuestion()
	if !ok || s.player == nil || s.Answered() {
		return false
	}

	if timeSpent < 0 || math.IsNaN(timeSpent) {
		timeSpent = 0
	}

	correct := CheckAnswer(answer, q.CorrectAnswer)
	if correct {
		s.streak++
	} else {
		s.streak = 0
	}
	s.answers = append(s.answers, domain.AnswerRecord{
		QuestionID: q.ID,
		Correct:    correct,
		TimeSpent:  timeSpent,
	})
	return correct
}

// NextQuestion advances one question; it stays put on the last question.
func (s *Session) NextQuestion() {
	if s.mission == nil || len(s.mission.Questions) == 0 || s.IsLastQuestion() {
		return
	}
	s.questionIndex++
}

// View renders the current question without its answer.
func (s *Session) View() (domain.QuestionView, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return domain.QuestionView{}, false
	}
	view := domain.QuestionView{
		MissionID: s.mission.ID,
		Index:     s.questionIndex,
		Total:     len(s.mission.Questions),
		ID:        q.ID,
		Type:      q.Type,
		Prompt:    q.Prompt,
		Options:   q.Options,
		DragItems: q.DragItems,
		TimeLimit: q.TimeLimit,
		IsLast:    s.IsLastQuestion(),
	}
	for _, z := range q.DropZones {
		view.DropZones = append(view.DropZones, domain.ZoneView{ID: z.ID, Label: z.Label})
	}
	return view, true
}
