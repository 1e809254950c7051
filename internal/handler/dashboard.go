package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/repository"
	"github.com/aidar/participant-manager/internal/view"
)

// DashboardHandler обрабатывает главную страницу
type DashboardHandler struct {
	repo    repository.Repository
	ui      config.UIConfig
	apiBase string
	pages   *Renderer
	logger  *zap.Logger
}

// NewDashboardHandler создает новый DashboardHandler
func NewDashboardHandler(repo repository.Repository, ui config.UIConfig, apiBase string, pages *Renderer, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		repo:    repo,
		ui:      ui,
		apiBase: apiBase,
		pages:   pages,
		logger:  logger,
	}
}

// Show обрабатывает GET /
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	d := view.NewDashboard(h.repo, h.ui.RecentStudies, h.logger)
	// Ошибка отражается в снимке как статус API
	_ = d.Load(r.Context())

	RespondWithPage(w, r, h.pages, http.StatusOK, PageDashboard, Page{
		Title:   "Dashboard",
		Nav:     PageDashboard,
		APIBase: h.apiBase,
		View:    d.Snapshot(),
	})
}
