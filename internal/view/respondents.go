package view

import (
	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository"
)

// Filter keys of the respondents view, in display order.
const (
	FilterState           = "state"
	FilterHouseholdIncome = "household_income"
	FilterAgeMin          = "age_min"
	FilterAgeMax          = "age_max"
)

// RespondentFilterKeys lists the filters of the respondents table.
var RespondentFilterKeys = []string{FilterState, FilterHouseholdIncome, FilterAgeMin, FilterAgeMax}

// Respondents is the filterable, paginated respondents table.
type Respondents struct {
	*List[domain.Respondent]
}

// NewRespondents creates the respondents view.
func NewRespondents(repo repository.RespondentRepository, pageSize int, logger *zap.Logger) *Respondents {
	return &Respondents{
		List: NewList[domain.Respondent]("respondents", repo.ListRespondents, pageSize, logger, RespondentFilterKeys...),
	}
}
