package repository

import (
	"context"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
)

// RespondentRepository определяет методы для работы с респондентами
type RespondentRepository interface {
	// ListRespondents возвращает страницу респондентов; params содержит только непустые фильтры и limit/offset
	ListRespondents(ctx context.Context, params listing.Params) (*domain.Page[domain.Respondent], error)

	// GetRespondent получает респондента по ID
	GetRespondent(ctx context.Context, id int64) (*domain.Respondent, error)

	// CreateRespondent создает нового респондента
	CreateRespondent(ctx context.Context, input *domain.RespondentInput) (*domain.Respondent, error)
}

// StudyRepository определяет методы для работы с исследованиями и назначениями
type StudyRepository interface {
	// ListStudies возвращает страницу исследований (опционально с фильтром status)
	ListStudies(ctx context.Context, params listing.Params) (*domain.Page[domain.Study], error)

	// GetStudy получает исследование по ID
	GetStudy(ctx context.Context, id int64) (*domain.Study, error)

	// FindMatches возвращает респондентов подходящих под условия исследования
	FindMatches(ctx context.Context, studyID int64, params listing.Params) (*domain.Page[domain.Respondent], error)

	// AssignRespondents назначает респондентов на исследование (операция атомарна для клиента)
	AssignRespondents(ctx context.Context, studyID int64, respondentIDs []int64) ([]domain.Assignment, error)

	// UpdateAssignment частично обновляет назначение
	UpdateAssignment(ctx context.Context, assignmentID int64, patch *domain.AssignmentPatch) (*domain.Assignment, error)
}

// HealthRepository определяет проверку доступности API
type HealthRepository interface {
	// CheckHealth возвращает статус API
	CheckHealth(ctx context.Context) (*domain.Health, error)
}

// Repository объединяет все методы API
type Repository interface {
	RespondentRepository
	StudyRepository
	HealthRepository
}
