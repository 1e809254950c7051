package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository"
)

// AssignmentHandler обрабатывает изменение статуса назначений
type AssignmentHandler struct {
	repo   repository.StudyRepository
	logger *zap.Logger
}

// NewAssignmentHandler создает новый AssignmentHandler
func NewAssignmentHandler(repo repository.StudyRepository, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		repo:   repo,
		logger: logger,
	}
}

// Update обрабатывает PATCH /assignments/{id} (JSON) и POST /assignments/{id} (форма)
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var (
		patch   domain.AssignmentPatch
		studyID int64
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid form body")
			return
		}
		if s := r.PostForm.Get("status"); s != "" {
			status := domain.AssignmentStatus(s)
			patch.Status = &status
		}
		studyID, _ = strconv.ParseInt(r.PostForm.Get("study_id"), 10, 64)
	}

	// Валидация запроса
	if patch.Status == nil || !patch.Status.Valid() {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "status must be one of invited, confirmed, completed, no_show")
		return
	}

	updated, err := h.repo.UpdateAssignment(r.Context(), id, &patch)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.Info("Assignment updated",
		zap.Int64("assignment_id", id),
		zap.String("status", string(updated.Status)),
	)

	if WantsJSON(r) || studyID <= 0 {
		RespondWithJSON(w, r, http.StatusOK, updated)
		return
	}
	Redirect(w, r, fmt.Sprintf("/studies/%d", studyID))
}
