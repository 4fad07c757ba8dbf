package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/domain"
	"mission-quiz-service/internal/platform/logger"
)

const maxLeaderboardLimit = 100

// APIHandler serves the read-only REST API.
type APIHandler struct {
	service *app.GameService
	log     *logger.Logger
}

func NewAPIHandler(service *app.GameService, log *logger.Logger) *APIHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &APIHandler{service: service, log: log}
}

// NewRouter mounts the REST API, the websocket endpoint and the health check.
func NewRouter(api *APIHandler, ws *WSHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/missions", api.listMissions)
		r.Get("/leaderboard", api.leaderboard)
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/badges", api.playerBadges)
			r.Get("/progress", api.playerProgress)
		})
	})
	return r
}

func (h *APIHandler) listMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.service.Missions(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, missions)
}

func (h *APIHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondJSON(w, http.StatusBadRequest, errorPayload{Message: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) playerBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.service.PlayerBadges(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, badges)
}

func (h *APIHandler) playerProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.PlayerProgress(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrMissionNotFound):
		respondJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	default:
		h.log.Error("api request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
