package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/repository"
)

// HealthResponse представляет ответ проверки состояния
type HealthResponse struct {
	Status string `json:"status"`
	API    string `json:"api,omitempty"`
}

// HealthHandler обрабатывает эндпоинты проверки состояния
type HealthHandler struct {
	repo   repository.HealthRepository
	logger *zap.Logger
}

// NewHealthHandler создает новый HealthHandler
func NewHealthHandler(repo repository.HealthRepository, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		repo:   repo,
		logger: logger,
	}
}

// Live обрабатывает GET /healthz, сам сервис жив без обращения к API
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready обрабатывает GET /readyz, проверяя доступность API исследований
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	health, err := h.repo.CheckHealth(r.Context())
	if err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", API: MessageForError(err)})
		return
	}
	if !health.Healthy() {
		RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", API: health.Status})
		return
	}
	RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ready", API: health.Status})
}
