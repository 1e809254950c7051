package view

import (
	"context"

	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository"
)

// FilterStatus is the only filter of the studies view.
const FilterStatus = "status"

// Studies is the studies grid with a status filter.
type Studies struct {
	*List[domain.Study]
}

// NewStudies creates the studies view.
func NewStudies(repo repository.StudyRepository, pageSize int, logger *zap.Logger) *Studies {
	return &Studies{
		List: NewList[domain.Study]("studies", repo.ListStudies, pageSize, logger, FilterStatus),
	}
}

// SetStatus filters by status; the empty status shows all studies.
func (s *Studies) SetStatus(ctx context.Context, status domain.StudyStatus) error {
	return s.SetFilter(ctx, FilterStatus, string(status))
}
