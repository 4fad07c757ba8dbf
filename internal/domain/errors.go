package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlayerNotFound is returned when a player record does not exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrMissionNotFound indicates the mission content could not be loaded.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrNoActiveMission is returned when an action needs a started mission.
	ErrNoActiveMission = errors.New("no active mission")
	// ErrNotLoggedIn is returned when an action needs a player bound to the session.
	ErrNotLoggedIn = errors.New("no player bound to session")
	// ErrAlreadyAnswered is returned for a second answer to the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrMissionAlreadyCompleted guards against completing one play-through twice.
	ErrMissionAlreadyCompleted = errors.New("mission already completed")
	// ErrInvalidCatalog indicates malformed mission content.
	ErrInvalidCatalog = errors.New("invalid mission catalog")
)
