package view

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/fetch"
	"github.com/aidar/participant-manager/internal/listing"
)

// PageFunc fetches one page of T for the given query.
type PageFunc[T any] func(ctx context.Context, params listing.Params) (*domain.Page[T], error)

// List is a paginated, filterable list view. Every change of filters or page
// issues a fresh fetch; when fetches overlap only the most recently issued
// one updates the view.
type List[T any] struct {
	name   string
	load   PageFunc[T]
	logger *zap.Logger
	seq    fetch.Sequencer

	mu    sync.Mutex
	state *listing.State
	items []T
	err   error
}

// NewList creates a list view with empty filters for keys.
func NewList[T any](name string, load PageFunc[T], pageSize int, logger *zap.Logger, keys ...string) *List[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List[T]{
		name:   name,
		load:   load,
		logger: logger,
		state:  listing.New(pageSize, keys...),
		items:  []T{},
	}
}

// Mount restores filters and page from the page URL and fetches the first
// result. A page past the end (stale URL) is clamped to the last page and
// fetched again; with no rows at all it returns to the first page without a
// second fetch.
func (l *List[T]) Mount(ctx context.Context, q url.Values) error {
	l.mu.Lock()
	l.state.Restore(q)
	l.mu.Unlock()

	if err := l.refresh(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	refetch := l.state.ClampPage() && l.state.Total() > 0
	l.mu.Unlock()
	if refetch {
		return l.refresh(ctx)
	}
	return nil
}

// SetFilter changes one filter, returns to the first page and fetches.
func (l *List[T]) SetFilter(ctx context.Context, key, value string) error {
	l.mu.Lock()
	changed := l.state.SetFilter(key, value)
	l.mu.Unlock()

	if !changed {
		return nil
	}
	return l.refresh(ctx)
}

// SetPage moves to page n (clamped) and fetches.
func (l *List[T]) SetPage(ctx context.Context, n int) error {
	l.mu.Lock()
	changed := l.state.SetPage(n)
	l.mu.Unlock()

	if !changed {
		return nil
	}
	return l.refresh(ctx)
}

// Next moves one page forward when "Next" is enabled.
func (l *List[T]) Next(ctx context.Context) error {
	l.mu.Lock()
	n := l.state.Page() + 1
	l.mu.Unlock()
	return l.SetPage(ctx, n)
}

func (l *List[T]) refresh(ctx context.Context) error {
	l.mu.Lock()
	params := l.state.Params()
	l.mu.Unlock()

	t := l.seq.Begin(ctx)
	page, err := l.load(t.Context(), params)

	applied := l.seq.Settle(t, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			// Previously fetched rows stay on screen next to the error.
			l.err = err
			return
		}
		l.err = nil
		l.items = page.Items
		l.state.SetTotal(page.Total)
	})

	if !applied {
		l.logger.Debug("Discarded stale list response",
			zap.String("view", l.name),
			zap.Uint64("seq", t.Seq()),
		)
		return nil
	}
	if err != nil {
		l.logger.Warn("List fetch failed",
			zap.String("view", l.name),
			zap.String("query", params.Encode()),
			zap.Error(err),
		)
	}
	return err
}

// Pagination is the rendered form of the pagination state.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	From       int  `json:"from"`
	To         int  `json:"to"`
}

func newPagination(s *listing.State) Pagination {
	from, to := s.Range()
	return Pagination{
		Page:       s.Page(),
		PageSize:   s.PageSize(),
		Total:      s.Total(),
		TotalPages: s.TotalPages(),
		HasPrev:    s.HasPrev(),
		HasNext:    s.HasNext(),
		From:       from,
		To:         to,
	}
}

// ListSnapshot is an immutable copy of a list view.
type ListSnapshot[T any] struct {
	Items      []T               `json:"items"`
	Filters    map[string]string `json:"filters"`
	Pagination Pagination        `json:"pagination"`
	Loading    bool              `json:"loading"`
	Error      *ErrorInfo        `json:"error,omitempty"`

	// State is a detached copy used to build filter and page links.
	State *listing.State `json:"-"`
}

// Snapshot returns the current state of the view.
func (l *List[T]) Snapshot() ListSnapshot[T] {
	loading := l.seq.Loading()

	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return ListSnapshot[T]{
		Items:      items,
		Filters:    l.state.Filters(),
		Pagination: newPagination(l.state),
		Loading:    loading,
		Error:      NewErrorInfo(l.err),
		State:      l.state.Clone(),
	}
}

// Err returns the last fetch failure, if any.
func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
