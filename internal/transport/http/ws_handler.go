package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/domain"
	"mission-quiz-service/internal/platform/logger"
)

type WSHandler struct {
	service  *app.GameService
	badges   *catalog.Catalog
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, badges *catalog.Catalog, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		badges:  badges,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	MissionID string `json:"missionId"`
}

type answerPayload struct {
	Answer    json.RawMessage `json:"answer"`
	TimeSpent float64         `json:"timeSpent"`
}

// answer decodes the submitted value. Anything that is not a string or a list of
// strings becomes the zero Answer, which grades as incorrect.
func (p answerPayload) answer() domain.Answer {
	var a domain.Answer
	if err := json.Unmarshal(p.Answer, &a); err != nil {
		return domain.Answer{}
	}
	return a
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type earnedBadge struct {
	Type domain.BadgeType `json:"type"`
	catalog.BadgeInfo
}

type missionCompletePayload struct {
	domain.MissionResult
	Badges []earnedBadge `json:"badges"`
}

// ServeWS upgrades HTTP requests to websockets and drives one player's play-through.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	displayName := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	player, err := h.service.Login(ctx, playerID, displayName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Reset(context.Background(), player.ID)

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "player_id", player.ID, "error", err)
				return
			}
		}
	}()

	send <- outboundMessage{Type: "joined", Payload: player}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg := h.handle(ctx, player.ID, displayName, inbound)
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, playerID, displayName string, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.MissionID == "" {
			return errorMessage("invalid start payload")
		}
		view, err := h.service.StartMission(ctx, playerID, payload.MissionID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "question", Payload: view}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload")
		}
		result, err := h.service.SubmitAnswer(ctx, playerID, payload.answer(), payload.TimeSpent)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "answerResult", Payload: result}

	case "next":
		view, err := h.service.NextQuestion(ctx, playerID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "question", Payload: view}

	case "complete":
		result, err := h.service.CompleteMission(ctx, playerID)
		if err != nil {
			if !isClientError(err) {
				return errorMessage("could not save mission results")
			}
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "missionComplete", Payload: h.describe(result)}

	case "reset":
		h.service.Reset(ctx, playerID)
		player, err := h.service.Login(ctx, playerID, displayName)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "joined", Payload: player}
	}
	return errorMessage("unsupported message type")
}

func (h *WSHandler) describe(result domain.MissionResult) missionCompletePayload {
	out := missionCompletePayload{MissionResult: result, Badges: []earnedBadge{}}
	for _, b := range result.EarnedBadges {
		info := catalog.BadgeInfo{Name: string(b.Type)}
		if h.badges != nil {
			info = h.badges.BadgeInfo(b.Type)
		}
		out.Badges = append(out.Badges, earnedBadge{Type: b.Type, BadgeInfo: info})
	}
	return out
}

// isClientError reports whether err describes a request the player can fix.
func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrSessionNotFound,
		domain.ErrNotLoggedIn,
		domain.ErrNoActiveMission,
		domain.ErrMissionAlreadyCompleted,
		domain.ErrMissionNotFound,
		domain.ErrAlreadyAnswered,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}
