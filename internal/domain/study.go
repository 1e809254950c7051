package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StudyStatus представляет этап жизненного цикла исследования
type StudyStatus string

// Возможные статусы исследования
const (
	StatusDraft      StudyStatus = "draft"      // Черновик
	StatusRecruiting StudyStatus = "recruiting" // Идет набор участников
	StatusInField    StudyStatus = "in_field"   // Исследование проводится
	StatusCompleted  StudyStatus = "completed"  // Исследование завершено
)

// StudyStatuses содержит статусы в порядке отображения в фильтре
var StudyStatuses = []StudyStatus{StatusDraft, StatusRecruiting, StatusInField, StatusCompleted}

// Label возвращает статус для отображения ("in_field" -> "in field")
func (s StudyStatus) Label() string {
	return strings.Replace(string(s), "_", " ", 1)
}

// IsActive возвращает true для исследований в наборе или в поле
func (s StudyStatus) IsActive() bool {
	return s == StatusRecruiting || s == StatusInField
}

// Methodology представляет метод проведения исследования
type Methodology string

// Известные методологии
const (
	MethodologyFocusGroup  Methodology = "focus_group"
	MethodologyIDI         Methodology = "idi"
	MethodologySurvey      Methodology = "survey"
	MethodologyEthnography Methodology = "ethnography"
)

var methodologyLabels = map[Methodology]string{
	MethodologyFocusGroup:  "Focus Group",
	MethodologyIDI:         "IDI",
	MethodologySurvey:      "Survey",
	MethodologyEthnography: "Ethnography",
}

// Label возвращает название методологии, неизвестные значения возвращаются как есть
func (m Methodology) Label() string {
	if label, ok := methodologyLabels[m]; ok {
		return label
	}
	return string(m)
}

// Operator представляет оператор условия скринера
type Operator string

// Операторы условий скринера
const (
	OpEq      Operator = "eq"
	OpNeq     Operator = "neq"
	OpGte     Operator = "gte"
	OpLte     Operator = "lte"
	OpIn      Operator = "in"
	OpBetween Operator = "between"
)

var operatorSymbols = map[Operator]string{
	OpEq:      "=",
	OpNeq:     "≠",
	OpGte:     "≥",
	OpLte:     "≤",
	OpIn:      "in",
	OpBetween: "between",
}

// Symbol возвращает символ оператора для отображения
func (o Operator) Symbol() string {
	if sym, ok := operatorSymbols[o]; ok {
		return sym
	}
	return string(o)
}

// CriterionValue хранит значение условия: скаляр или список скаляров
type CriterionValue struct {
	Values []string
	List   bool
}

// UnmarshalJSON принимает строку, число, bool или массив из них
func (v *CriterionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = CriterionValue{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		values := make([]string, 0, len(raw))
		for _, item := range raw {
			s, err := scalarString(item)
			if err != nil {
				return err
			}
			values = append(values, s)
		}
		*v = CriterionValue{Values: values, List: true}
		return nil
	}

	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*v = CriterionValue{Values: []string{s}}
	return nil
}

// MarshalJSON возвращает значение в исходной форме (скаляр или массив строк)
func (v CriterionValue) MarshalJSON() ([]byte, error) {
	if v.List {
		if v.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Values)
	}
	if len(v.Values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(v.Values[0])
}

// String возвращает значение для отображения, элементы списка через запятую
func (v CriterionValue) String() string {
	return strings.Join(v.Values, ", ")
}

func scalarString(data []byte) (string, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return "", err
	}
	switch val := value.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported criterion value %s", string(data))
	}
}

// Criterion представляет одно условие скринера
type Criterion struct {
	FieldName string         `json:"field_name"`
	Operator  Operator       `json:"operator"`
	Value     CriterionValue `json:"value"`
}

// Study представляет исследование с условиями отбора участников
type Study struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	ClientName       string           `json:"client_name"`
	Methodology      Methodology      `json:"methodology"`
	Status           StudyStatus      `json:"status"`
	TargetCount      int              `json:"target_count"`
	IncentiveAmount  *float64         `json:"incentive_amount,omitempty"`
	Criteria         []Criterion      `json:"criteria"`
	AssignmentCounts AssignmentCounts `json:"assignment_counts"`
}

// HasIncentive возвращает true если для исследования указано ненулевое вознаграждение
func (s *Study) HasIncentive() bool {
	return s.IncentiveAmount != nil && *s.IncentiveAmount > 0
}

// Normalize заполняет значения по умолчанию для полей, которые API может не вернуть
func (s *Study) Normalize() {
	if s.Criteria == nil {
		s.Criteria = []Criterion{}
	}
}
