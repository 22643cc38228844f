package handler

import (
	"encoding/json"
	"net/http"

	"github.com/openboard-dev/openboard/internal/config"
	"github.com/openboard-dev/openboard/internal/logger"
	"github.com/openboard-dev/openboard/internal/render"
	"github.com/openboard-dev/openboard/internal/service"
)

type Handler struct {
	auth      service.AuthService
	board     service.BoardService
	editor    service.EditorService
	access    service.AccessService
	analytics service.AnalyticsService
	renderer  *render.Renderer
	health    HealthChecker
	cfg       *config.Config
}

func New(
	auth service.AuthService,
	board service.BoardService,
	editor service.EditorService,
	access service.AccessService,
	analytics service.AnalyticsService,
	renderer *render.Renderer,
	health HealthChecker,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, board, editor, access, analytics, renderer, health, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
