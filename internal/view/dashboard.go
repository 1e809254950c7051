package view

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
	"github.com/aidar/participant-manager/internal/repository"
)

// APIStatus is the connection indicator shown on the dashboard.
type APIStatus string

// Connection indicator values.
const (
	APIChecking  APIStatus = "checking"
	APIConnected APIStatus = "connected"
	APIError     APIStatus = "error"
)

// Label returns the indicator text.
func (s APIStatus) Label() string {
	switch s {
	case APIConnected:
		return "API Connected"
	case APIError:
		return "API Error"
	default:
		return "API Checking..."
	}
}

// DashboardStats are the stat cards of the dashboard.
type DashboardStats struct {
	TotalRespondents int `json:"total_respondents"`
	TotalStudies     int `json:"total_studies"`
	ActiveStudies    int `json:"active_studies"`
	CompletedStudies int `json:"completed_studies"`
}

// Dashboard is the summary page: API status, stat cards and recent studies.
type Dashboard struct {
	repo   repository.Repository
	recent int
	logger *zap.Logger

	mu      sync.Mutex
	status  APIStatus
	stats   *DashboardStats
	studies []domain.Study
	loading bool
	err     error
}

// NewDashboard creates the dashboard view showing up to recent studies.
func NewDashboard(repo repository.Repository, recent int, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		repo:    repo,
		recent:  recent,
		logger:  logger,
		status:  APIChecking,
		studies: []domain.Study{},
		loading: true,
	}
}

// Load checks API health, then fetches studies and the respondent total in
// parallel. Any failure marks the API status as error and leaves the stats
// empty.
func (d *Dashboard) Load(ctx context.Context) error {
	defer func() {
		d.mu.Lock()
		d.loading = false
		d.mu.Unlock()
	}()

	health, err := d.repo.CheckHealth(ctx)
	if err != nil {
		d.fail(err)
		return err
	}

	d.mu.Lock()
	if health.Healthy() {
		d.status = APIConnected
	} else {
		d.status = APIError
	}
	d.mu.Unlock()

	var (
		studies     *domain.Page[domain.Study]
		respondents *domain.Page[domain.Respondent]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		studies, err = d.repo.ListStudies(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		respondents, err = d.repo.ListRespondents(gctx, listing.Params{{Key: listing.ParamLimit, Value: "1"}})
		return err
	})
	if err := g.Wait(); err != nil {
		d.fail(err)
		return err
	}

	stats := &DashboardStats{
		TotalRespondents: respondents.Total,
		TotalStudies:     studies.Total,
	}
	for _, s := range studies.Items {
		switch {
		case s.Status.IsActive():
			stats.ActiveStudies++
		case s.Status == domain.StatusCompleted:
			stats.CompletedStudies++
		}
	}

	recent := studies.Items
	if len(recent) > d.recent {
		recent = recent[:d.recent]
	}

	d.mu.Lock()
	d.stats = stats
	d.studies = append([]domain.Study(nil), recent...)
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) fail(err error) {
	d.logger.Warn("Dashboard load failed", zap.Error(err))
	d.mu.Lock()
	d.status = APIError
	d.err = err
	d.mu.Unlock()
}

// DashboardSnapshot is an immutable copy of the dashboard.
type DashboardSnapshot struct {
	APIStatus     APIStatus       `json:"api_status"`
	Stats         *DashboardStats `json:"stats"`
	RecentStudies []domain.Study  `json:"recent_studies"`
	Loading       bool            `json:"loading"`
	Error         *ErrorInfo      `json:"error,omitempty"`
}

// Snapshot returns the current state of the dashboard.
func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := DashboardSnapshot{
		APIStatus:     d.status,
		RecentStudies: append([]domain.Study{}, d.studies...),
		Loading:       d.loading,
		Error:         NewErrorInfo(d.err),
	}
	if d.stats != nil {
		stats := *d.stats
		snap.Stats = &stats
	}
	return snap
}
