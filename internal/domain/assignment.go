package domain

import "strings"

// AssignmentStatus представляет этап участия респондента в исследовании
type AssignmentStatus string

// Возможные статусы назначения
const (
	AssignmentInvited   AssignmentStatus = "invited"   // Приглашен
	AssignmentConfirmed AssignmentStatus = "confirmed" // Подтвердил участие
	AssignmentCompleted AssignmentStatus = "completed" // Прошел исследование
	AssignmentNoShow    AssignmentStatus = "no_show"   // Не явился
)

// AssignmentStatuses содержит статусы назначения в порядке жизненного цикла
var AssignmentStatuses = []AssignmentStatus{
	AssignmentInvited, AssignmentConfirmed, AssignmentCompleted, AssignmentNoShow,
}

// Valid проверяет что статус входит в известный набор
func (s AssignmentStatus) Valid() bool {
	for _, known := range AssignmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label возвращает статус для отображения ("no_show" -> "no show")
func (s AssignmentStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Assignment представляет связь респондента с исследованием
type Assignment struct {
	ID           int64            `json:"id"`
	StudyID      int64            `json:"study_id"`
	RespondentID int64            `json:"respondent_id"`
	Status       AssignmentStatus `json:"status"`
}

// AssignmentPatch представляет частичное обновление назначения
type AssignmentPatch struct {
	Status *AssignmentStatus `json:"status,omitempty"`
}

// AssignRequest представляет тело запроса POST /api/studies/{id}/assign
type AssignRequest struct {
	RespondentIDs []int64 `json:"respondent_ids"`
}

// AssignmentCounts содержит количество назначений исследования по статусам
type AssignmentCounts struct {
	Invited   int `json:"invited"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	NoShow    int `json:"no_show"`
}
