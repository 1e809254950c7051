package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
)

// ListStudies получает страницу исследований (GET /api/studies)
func (c *Client) ListStudies(ctx context.Context, params listing.Params) (*domain.Page[domain.Study], error) {
	var page domain.Page[domain.Study]
	if err := c.do(ctx, http.MethodGet, "/api/studies", params, nil, &page); err != nil {
		return nil, err
	}
	page.Normalize()
	for i := range page.Items {
		page.Items[i].Normalize()
	}
	return &page, nil
}

// GetStudy получает исследование по ID (GET /api/studies/{id})
func (c *Client) GetStudy(ctx context.Context, id int64) (*domain.Study, error) {
	var study domain.Study
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/studies/%d", id), nil, nil, &study); err != nil {
		if domain.StatusOf(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", domain.ErrStudyNotFound, err)
		}
		return nil, err
	}
	study.Normalize()
	return &study, nil
}

// FindMatches получает респондентов подходящих под условия исследования (GET /api/studies/{id}/match)
func (c *Client) FindMatches(ctx context.Context, studyID int64, params listing.Params) (*domain.Page[domain.Respondent], error) {
	var page domain.Page[domain.Respondent]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/studies/%d/match", studyID), params, nil, &page); err != nil {
		return nil, err
	}
	page.Normalize()
	return &page, nil
}

// AssignRespondents назначает респондентов на исследование (POST /api/studies/{id}/assign)
func (c *Client) AssignRespondents(ctx context.Context, studyID int64, respondentIDs []int64) ([]domain.Assignment, error) {
	op := fmt.Sprintf("/api/studies/%d/assign", studyID)
	req := domain.AssignRequest{RespondentIDs: respondentIDs}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, op, nil, req, &raw); err != nil {
		return nil, err
	}

	assignments, err := decodeAssignments(raw)
	if err != nil {
		return nil, &domain.APIError{Kind: domain.KindDecodeError, Op: http.MethodPost + " " + op, Err: err}
	}
	return assignments, nil
}

// decodeAssignments принимает массив назначений или объект с полем assignments/items.
// Другие объекты считаются успешным ответом без деталей.
func decodeAssignments(raw json.RawMessage) ([]domain.Assignment, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Assignment{}, nil
	}

	if raw[0] == '[' {
		var list []domain.Assignment
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var envelope struct {
		Assignments []domain.Assignment `json:"assignments"`
		Items       []domain.Assignment `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	switch {
	case envelope.Assignments != nil:
		return envelope.Assignments, nil
	case envelope.Items != nil:
		return envelope.Items, nil
	default:
		return []domain.Assignment{}, nil
	}
}

// UpdateAssignment частично обновляет назначение (PATCH /api/assignments/{id})
func (c *Client) UpdateAssignment(ctx context.Context, assignmentID int64, patch *domain.AssignmentPatch) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/assignments/%d", assignmentID), nil, patch, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}
