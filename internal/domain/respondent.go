package domain

import "strings"

// Respondent представляет потенциального участника исследования
type Respondent struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	State           string `json:"state"`
	Age             int    `json:"age"`
	HouseholdIncome string `json:"household_income"`
	Occupation      string `json:"occupation"`
	IsActive        bool   `json:"is_active"`
}

// Name возвращает полное имя респондента
func (r *Respondent) Name() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// RespondentInput представляет тело запроса на создание респондента
type RespondentInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	State           string `json:"state,omitempty"`
	Age             int    `json:"age,omitempty"`
	HouseholdIncome string `json:"household_income,omitempty"`
	Occupation      string `json:"occupation,omitempty"`
	IsActive        bool   `json:"is_active"`
}

// States содержит штаты доступные в фильтре респондентов
var States = []string{
	"NY", "CA", "TX", "FL", "IL", "PA", "OH", "GA",
	"NC", "MI", "NJ", "VA", "WA", "AZ", "MA", "CO",
}

// IncomeBrackets содержит категории дохода домохозяйства в порядке возрастания
var IncomeBrackets = []string{
	"Under 25k", "25k-50k", "50k-75k", "75k-100k", "100k-150k", "150k+",
}
