package domain

import "time"

// Difficulty grades a question or a mission.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType decides how a question is presented and which answer shape it expects.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionDragDrop       QuestionType = "drag-drop"
	QuestionFlashcard      QuestionType = "flashcard"
	QuestionCaseStudy      QuestionType = "case-study"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionDragDrop, QuestionFlashcard, QuestionCaseStudy:
		return true
	}
	return false
}

// AnswerKind returns the answer shape a question of this type is graded against.
func (t QuestionType) AnswerKind() AnswerKind {
	if t == QuestionDragDrop {
		return AnswerOrdered
	}
	return AnswerSingle
}

// BadgeType enumerates the achievements a player can earn.
type BadgeType string

const (
	BadgeFirstMission   BadgeType = "first_mission"
	BadgeStreak3        BadgeType = "streak_3"
	BadgePerfectMission BadgeType = "perfect_mission"
	BadgeGeniusIdea     BadgeType = "genius_idea"
	BadgeFlawlessTheme  BadgeType = "flawless_theme"
	BadgeSpeedMaster    BadgeType = "speed_master"
)

func (b BadgeType) Valid() bool {
	switch b {
	case BadgeFirstMission, BadgeStreak3, BadgePerfectMission, BadgeGeniusIdea, BadgeFlawlessTheme, BadgeSpeedMaster:
		return true
	}
	return false
}

// DragItem is a draggable card of a drag-drop question.
type DragItem struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// DropZone is a fixed target slot; CorrectItemID names the DragItem that belongs there.
type DropZone struct {
	ID            string `json:"id" yaml:"id"`
	Label         string `json:"label" yaml:"label"`
	CorrectItemID string `json:"correctItemId" yaml:"correctItemId"`
}

// Question is immutable catalog content.
type Question struct {
	ID            string       `json:"id" yaml:"id"`
	Type          QuestionType `json:"type" yaml:"type"`
	Prompt        string       `json:"prompt" yaml:"prompt"`
	Options       []string     `json:"options,omitempty" yaml:"options"`
	CorrectAnswer Answer       `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string       `json:"explanation" yaml:"explanation"`
	Difficulty    Difficulty   `json:"difficulty" yaml:"difficulty"`
	TimeLimit     int          `json:"timeLimit" yaml:"timeLimit"` // seconds
	DragItems     []DragItem   `json:"dragItems,omitempty" yaml:"dragItems"`
	DropZones     []DropZone   `json:"dropZones,omitempty" yaml:"dropZones"`
}

// Mission is an ordered, themed set of questions.
type Mission struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Category      string     `json:"category" yaml:"category"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedTime int        `json:"estimatedTime" yaml:"estimatedTime"` // minutes
	Icon          string     `json:"icon,omitempty" yaml:"icon"`
	Color         string     `json:"color,omitempty" yaml:"color"`
	Questions     []Question `json:"questions" yaml:"questions"`
}

// Question looks a question up by id.
func (m Mission) Question(id string) (Question, bool) {
	for _, q := range m.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// AnswerRecord is one submitted answer, in submission order.
type AnswerRecord struct {
	QuestionID string  `json:"questionId"`
	Correct    bool    `json:"correct"`
	TimeSpent  float64 `json:"timeSpent"` // seconds
}

// Player is the persisted player profile.
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	IsAnonymous bool      `json:"isAnonymous"`
	TotalPoints int       `json:"totalPoints"`
	TotalBadges int       `json:"totalBadges"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Progress is one logical row per (player, mission).
type Progress struct {
	PlayerID     string `json:"playerId"`
	MissionID    string `json:"missionId"`
	Completed    bool   `json:"completed"`
	Score        int    `json:"score"`
	TimeSpent    int64  `json:"timeSpent"` // milliseconds
	Attempts     int    `json:"attempts"`
	PerfectScore bool   `json:"perfectScore"`
}

// Score is an append-only per-answer points record.
type Score struct {
	PlayerID        string    `json:"playerId"`
	MissionID       string    `json:"missionId"`
	Points          int       `json:"points"`
	TimeBonus       int       `json:"timeBonus"`
	DifficultyBonus int       `json:"difficultyBonus"`
	StreakBonus     int       `json:"streakBonus"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BadgeData carries the context a badge was earned in.
type BadgeData struct {
	MissionID string `json:"mission_id,omitempty"`
}

// Badge is an earned achievement.
type Badge struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"playerId"`
	Type     BadgeType `json:"badgeType"`
	Data     BadgeData `json:"badgeData"`
	EarnedAt time.Time `json:"earnedAt"`
}

// LeaderboardEntry is the aggregated standing of a player.
type LeaderboardEntry struct {
	PlayerID          string    `json:"playerId"`
	DisplayName       string    `json:"displayName"`
	IsAnonymous       bool      `json:"isAnonymous"`
	TotalScore        int       `json:"totalScore"`
	MissionsCompleted int       `json:"missionsCompleted"`
	AverageTime       int64     `json:"averageTime"` // milliseconds
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MissionResult summarizes a completed play-through.
type MissionResult struct {
	MissionID    string  `json:"missionId"`
	Score        int     `json:"score"`
	Perfect      bool    `json:"perfect"`
	Attempts     int     `json:"attempts"`
	TimeSpent    int64   `json:"timeSpent"` // milliseconds
	EarnedBadges []Badge `json:"earnedBadges"`
}

// MissionCompletedEvent is published after a completion commits.
type MissionCompletedEvent struct {
	PlayerID    string      `json:"playerId"`
	MissionID   string      `json:"missionId"`
	Score       int         `json:"score"`
	Perfect     bool        `json:"perfect"`
	Attempts    int         `json:"attempts"`
	Badges      []BadgeType `json:"badges"`
	CompletedAt time.Time   `json:"completedAt"`
}

// QuestionView is a question as shown to players; it never carries the correct answer.
type QuestionView struct {
	MissionID string       `json:"missionId"`
	Index     int          `json:"index"`
	Total     int          `json:"total"`
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Prompt    string       `json:"prompt"`
	Options   []string     `json:"options,omitempty"`
	DragItems []DragItem   `json:"dragItems,omitempty"`
	DropZones []ZoneView   `json:"dropZones,omitempty"`
	TimeLimit int          `json:"timeLimit"`
	IsLast    bool         `json:"isLast"`
}

// ZoneView is a drop zone without its correct item.
type ZoneView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AnswerResult summarizes the outcome of a single submission.
type AnswerResult struct {
	QuestionID  string `json:"questionId"`
	Correct     bool   `json:"correct"`
	Points      int    `json:"points"`
	Streak      int    `json:"streak"`
	Explanation string `json:"explanation"`
	IsLast      bool   `json:"isLast"`
}

// MissionSummary is catalog metadata without questions.
type MissionSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime int        `json:"estimatedTime"`
	Icon          string     `json:"icon,omitempty"`
	Color         string     `json:"color,omitempty"`
	QuestionCount int        `json:"questionCount"`
}

// Summary strips the questions from a mission.
func (m Mission) Summary() MissionSummary {
	return MissionSummary{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		Difficulty:    m.Difficulty,
		EstimatedTime: m.EstimatedTime,
		Icon:          m.Icon,
		Color:         m.Color,
		QuestionCount: len(m.Questions),
	}
}
