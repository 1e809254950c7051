package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository"
	"github.com/aidar/participant-manager/internal/selection"
	"github.com/aidar/participant-manager/internal/view"
)

// Параметры страницы исследования
const (
	ParamMatches       = "matches"
	ParamSelected      = "selected"
	ParamRespondentIDs = "respondent_ids"
	ParamAssigned      = "assigned"
)

// StudyHandler обрабатывает страницы исследований
type StudyHandler struct {
	repo   repository.StudyRepository
	ui     config.UIConfig
	pages  *Renderer
	logger *zap.Logger
}

// NewStudyHandler создает новый StudyHandler
func NewStudyHandler(repo repository.StudyRepository, ui config.UIConfig, pages *Renderer, logger *zap.Logger) *StudyHandler {
	return &StudyHandler{
		repo:   repo,
		ui:     ui,
		pages:  pages,
		logger: logger,
	}
}

// AssignResponse представляет ответ на назначение респондентов
type AssignResponse struct {
	Assignments []domain.Assignment      `json:"assignments"`
	Study       view.StudyDetailSnapshot `json:"study"`
}

// List обрабатывает GET /studies?status=...&page=...
func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	v := view.NewStudies(h.repo, h.ui.PageSize, h.logger)
	_ = v.Mount(r.Context(), r.URL.Query())

	RespondWithPage(w, r, h.pages, http.StatusOK, PageStudies, Page{
		Title: "Studies",
		Nav:   PageStudies,
		Path:  "/studies",
		View:  v.Snapshot(),
	})
}

// Show обрабатывает GET /studies/{id}?matches=1&selected=...
func (h *StudyHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	v := view.NewStudyDetail(h.repo, id, h.ui.MatchLimit, h.logger)
	v.Select(restoreSelection(q[ParamSelected]).IDs()...)
	v.ShowAssigned(restoreAssigned(id, q[ParamAssigned])...)

	h.load(r, v, q.Get(ParamMatches) == "1")
	h.respond(w, r, v, http.StatusOK, nil)
}

// Assign обрабатывает POST /studies/{id}/assign с полями respondent_ids
func (h *StudyHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid form body")
		return
	}

	v := view.NewStudyDetail(h.repo, id, h.ui.MatchLimit, h.logger)
	v.Select(restoreSelection(r.PostForm[ParamRespondentIDs]).IDs()...)

	assignments, err := v.Assign(r.Context())
	if err != nil {
		if WantsJSON(r) {
			HandleError(w, r, err)
			return
		}
		// Выбор сохраняется, страница показывает ошибку рядом с совпадениями
		h.load(r, v, true)
		h.respond(w, r, v, StatusForError(err), err)
		return
	}

	if WantsJSON(r) {
		RespondWithJSON(w, r, http.StatusOK, AssignResponse{
			Assignments: assignments,
			Study:       v.Snapshot(),
		})
		return
	}
	// POST/redirect/GET: перезагрузка страницы не повторяет назначение
	Redirect(w, r, assignedURL(id, assignments))
}

// assignedURL возвращает адрес страницы исследования с совпадениями и
// только что созданными назначениями
func assignedURL(studyID int64, assignments []domain.Assignment) string {
	q := url.Values{}
	q.Set(ParamMatches, "1")
	for _, a := range assignments {
		q.Add(ParamAssigned, fmt.Sprintf("%d:%d:%s", a.ID, a.RespondentID, a.Status))
	}
	return fmt.Sprintf("/studies/%d?%s", studyID, q.Encode())
}

// restoreAssigned разбирает значения вида id:respondent_id:status,
// некорректные значения пропускаются
func restoreAssigned(studyID int64, values []string) []domain.Assignment {
	var out []domain.Assignment
	for _, raw := range values {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			continue
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		respondentID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || respondentID <= 0 {
			continue
		}
		status := domain.AssignmentStatus(parts[2])
		if !status.Valid() {
			continue
		}
		out = append(out, domain.Assignment{
			ID:           id,
			StudyID:      studyID,
			RespondentID: respondentID,
			Status:       status,
		})
	}
	return out
}

// load загружает исследование и, если нужно, совпадения параллельно.
// Ошибки сохраняются в представлении.
func (h *StudyHandler) load(r *http.Request, v *view.StudyDetail, matches bool) {
	var g errgroup.Group
	g.Go(func() error { return v.Load(r.Context()) })
	if matches {
		g.Go(func() error { return v.FindMatches(r.Context()) })
	}
	_ = g.Wait()
}

func (h *StudyHandler) respond(w http.ResponseWriter, r *http.Request, v *view.StudyDetail, status int, flash error) {
	snap := v.Snapshot()
	if snap.NotFound {
		if WantsJSON(r) {
			RespondWithError(w, r, http.StatusNotFound, string(domain.CodeNotFound), "study not found")
			return
		}
		status = http.StatusNotFound
	}

	title := "Study not found"
	if snap.Study != nil {
		title = snap.Study.Title
	}
	RespondWithPage(w, r, h.pages, status, PageStudy, Page{
		Title: title,
		Nav:   PageStudies,
		Flash: FlashForError(flash),
		View:  snap,
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid id")
		return 0, false
	}
	return id, true
}

func restoreSelection(values []string) *selection.Set {
	s := selection.New()
	s.Restore(values)
	return s
}
