package view

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/fetch"
	"github.com/aidar/participant-manager/internal/listing"
	"github.com/aidar/participant-manager/internal/repository"
	"github.com/aidar/participant-manager/internal/selection"
)

// StudyDetail shows one study, its criteria and, on request, the respondents
// matching it. Respondents picked from the matches form the selection that
// Assign sends to the API.
type StudyDetail struct {
	repo       repository.StudyRepository
	id         int64
	matchLimit int
	logger     *zap.Logger

	studySeq fetch.Sequencer
	matchSeq fetch.Sequencer

	mu          sync.Mutex
	study       *domain.Study
	matches     *domain.Page[domain.Respondent]
	showMatches bool
	selected    *selection.Set
	assigning   bool
	assigned    []domain.Assignment
	err         error
}

// NewStudyDetail creates the detail view of study id with an empty selection.
func NewStudyDetail(repo repository.StudyRepository, id int64, matchLimit int, logger *zap.Logger) *StudyDetail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyDetail{
		repo:       repo,
		id:         id,
		matchLimit: matchLimit,
		logger:     logger,
		selected:   selection.New(),
	}
}

// ID returns the study id of the view.
func (v *StudyDetail) ID() int64 { return v.id }

// Load fetches the study.
func (v *StudyDetail) Load(ctx context.Context) error {
	t := v.studySeq.Begin(ctx)
	study, err := v.repo.GetStudy(t.Context(), v.id)

	applied := v.studySeq.Settle(t, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if err != nil {
			v.err = err
			return
		}
		v.study = study
	})
	if !applied {
		return nil
	}
	if err != nil {
		v.logger.Warn("Study fetch failed", zap.Int64("study_id", v.id), zap.Error(err))
	}
	return err
}

// FindMatches shows the matches panel and fetches matching respondents.
// Matches are never fetched implicitly.
func (v *StudyDetail) FindMatches(ctx context.Context) error {
	v.mu.Lock()
	v.showMatches = true
	v.mu.Unlock()

	params := listing.Params{{Key: listing.ParamLimit, Value: strconv.Itoa(v.matchLimit)}}

	t := v.matchSeq.Begin(ctx)
	page, err := v.repo.FindMatches(t.Context(), v.id, params)

	applied := v.matchSeq.Settle(t, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if err != nil {
			v.err = err
			return
		}
		v.matches = page
	})
	if !applied {
		return nil
	}
	if err != nil {
		v.logger.Warn("Match fetch failed", zap.Int64("study_id", v.id), zap.Error(err))
	}
	return err
}

// Toggle flips the selection of respondent id and reports whether it is
// selected afterwards.
func (v *StudyDetail) Toggle(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected.Toggle(id)
}

// Select replaces the selection, typically from the ids carried in the page
// URL or the assign form.
func (v *StudyDetail) Select(ids ...int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = selection.New(ids...)
}

// ShowAssigned sets the rows of the "just assigned" panel, typically restored
// from the URL the browser is redirected to after an assignment.
func (v *StudyDetail) ShowAssigned(assignments ...domain.Assignment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.assigned = append([]domain.Assignment(nil), assignments...)
}

// Selection returns a copy of the current selection.
func (v *StudyDetail) Selection() *selection.Set {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected.Clone()
}

// Assign sends the whole selection to the API. With an empty selection it
// returns ErrEmptySelection without calling the API. On success the selection
// is cleared and the study and matches are fetched again; on failure the
// selection is kept.
func (v *StudyDetail) Assign(ctx context.Context) ([]domain.Assignment, error) {
	v.mu.Lock()
	if v.selected.Empty() {
		v.mu.Unlock()
		return nil, domain.ErrEmptySelection
	}
	if v.assigning {
		v.mu.Unlock()
		return nil, ErrAssignInProgress
	}
	ids := v.selected.IDs()
	v.assigning = true
	v.mu.Unlock()

	assignments, err := v.repo.AssignRespondents(ctx, v.id, ids)
	if err != nil {
		v.mu.Lock()
		v.assigning = false
		v.err = err
		v.mu.Unlock()
		v.logger.Warn("Assignment failed",
			zap.Int64("study_id", v.id),
			zap.Int64s("respondent_ids", ids),
			zap.Error(err),
		)
		return nil, err
	}

	v.mu.Lock()
	v.selected.Clear()
	v.assigned = assignments
	v.err = nil
	v.mu.Unlock()

	v.logger.Info("Respondents assigned",
		zap.Int64("study_id", v.id),
		zap.Int("count", len(ids)),
	)

	// Failures of the refresh are recorded on the view; the assignment itself
	// has already succeeded.
	var g errgroup.Group
	g.Go(func() error { return v.Load(ctx) })
	g.Go(func() error { return v.FindMatches(ctx) })
	if err := g.Wait(); err != nil {
		v.logger.Warn("Refresh after assignment failed", zap.Int64("study_id", v.id), zap.Error(err))
	}

	v.mu.Lock()
	v.assigning = false
	v.mu.Unlock()

	return assignments, nil
}

// StudyDetailSnapshot is an immutable copy of the detail view.
type StudyDetailSnapshot struct {
	StudyID        int64               `json:"study_id"`
	Study          *domain.Study       `json:"study"`
	NotFound       bool                `json:"not_found"`
	Loading        bool                `json:"loading"`
	ShowMatches    bool                `json:"show_matches"`
	MatchesLoading bool                `json:"matches_loading"`
	Matches        []domain.Respondent `json:"matches"`
	MatchTotal     int                 `json:"match_total"`
	Selected       []int64             `json:"selected"`
	Assigning      bool                `json:"assigning"`
	Assigned       []domain.Assignment `json:"assigned,omitempty"`
	Error          *ErrorInfo          `json:"error,omitempty"`

	// Selection is a detached copy used to build toggle links.
	Selection *selection.Set `json:"-"`
}

// CanAssign reports whether the assign button is enabled.
func (s StudyDetailSnapshot) CanAssign() bool {
	return len(s.Selected) > 0 && !s.Assigning
}

// IsSelected reports whether respondent id is selected.
func (s StudyDetailSnapshot) IsSelected(id int64) bool {
	return s.Selection != nil && s.Selection.Contains(id)
}

// Snapshot returns the current state of the view.
func (v *StudyDetail) Snapshot() StudyDetailSnapshot {
	studyLoading := v.studySeq.Loading()
	matchesLoading := v.matchSeq.Loading()

	v.mu.Lock()
	defer v.mu.Unlock()

	snap := StudyDetailSnapshot{
		StudyID:        v.id,
		NotFound:       v.study == nil && errors.Is(v.err, domain.ErrStudyNotFound),
		Loading:        studyLoading,
		ShowMatches:    v.showMatches,
		MatchesLoading: v.showMatches && (matchesLoading || v.matches == nil && v.err == nil),
		Matches:        []domain.Respondent{},
		Selected:       v.selected.IDs(),
		Assigning:      v.assigning,
		Assigned:       v.assigned,
		Error:          NewErrorInfo(v.err),
		Selection:      v.selected.Clone(),
	}
	if v.study != nil {
		study := *v.study
		snap.Study = &study
	}
	if v.matches != nil {
		snap.Matches = append(snap.Matches, v.matches.Items...)
		snap.MatchTotal = v.matches.Total
	}
	return snap
}

// Err returns the last failure of the view, if any.
func (v *StudyDetail) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
