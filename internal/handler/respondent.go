package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository"
	"github.com/aidar/participant-manager/internal/view"
)

// RespondentHandler обрабатывает страницу респондентов
type RespondentHandler struct {
	repo   repository.RespondentRepository
	ui     config.UIConfig
	pages  *Renderer
	logger *zap.Logger
}

// NewRespondentHandler создает новый RespondentHandler
func NewRespondentHandler(repo repository.RespondentRepository, ui config.UIConfig, pages *Renderer, logger *zap.Logger) *RespondentHandler {
	return &RespondentHandler{
		repo:   repo,
		ui:     ui,
		pages:  pages,
		logger: logger,
	}
}

// List обрабатывает GET /respondents?state=...&household_income=...&age_min=...&age_max=...&page=...
func (h *RespondentHandler) List(w http.ResponseWriter, r *http.Request) {
	v := view.NewRespondents(h.repo, h.ui.PageSize, h.logger)
	_ = v.Mount(r.Context(), r.URL.Query())

	RespondWithPage(w, r, h.pages, http.StatusOK, PageRespondents, Page{
		Title: "Respondents",
		Nav:   PageRespondents,
		Path:  "/respondents",
		View:  v.Snapshot(),
	})
}

// Create обрабатывает POST /respondents (JSON или форма)
func (h *RespondentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.RespondentInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid form body")
			return
		}
		in = respondentFromForm(r)
	}

	// Валидация запроса
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "first_name, last_name and email are required")
		return
	}
	if in.Age < 0 {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "age must not be negative")
		return
	}

	created, err := h.repo.CreateRespondent(r.Context(), &in)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.Info("Respondent created", zap.Int64("respondent_id", created.ID))

	if WantsJSON(r) {
		RespondWithJSON(w, r, http.StatusCreated, created)
		return
	}
	Redirect(w, r, "/respondents")
}

func respondentFromForm(r *http.Request) domain.RespondentInput {
	age, _ := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("age")))
	active, _ := strconv.ParseBool(r.PostForm.Get("is_active"))
	return domain.RespondentInput{
		FirstName:       strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:        strings.TrimSpace(r.PostForm.Get("last_name")),
		Email:           strings.TrimSpace(r.PostForm.Get("email")),
		State:           r.PostForm.Get("state"),
		Age:             age,
		HouseholdIncome: r.PostForm.Get("household_income"),
		Occupation:      strings.TrimSpace(r.PostForm.Get("occupation")),
		IsActive:        active,
	}
}
