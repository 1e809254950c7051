package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
)

// ListRespondents получает страницу респондентов (GET /api/respondents)
func (c *Client) ListRespondents(ctx context.Context, params listing.Params) (*domain.Page[domain.Respondent], error) {
	var page domain.Page[domain.Respondent]
	if err := c.do(ctx, http.MethodGet, "/api/respondents", params, nil, &page); err != nil {
		return nil, err
	}
	page.Normalize()
	return &page, nil
}

// GetRespondent получает респондента по ID (GET /api/respondents/{id})
func (c *Client) GetRespondent(ctx context.Context, id int64) (*domain.Respondent, error) {
	var respondent domain.Respondent
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/respondents/%d", id), nil, nil, &respondent); err != nil {
		return nil, err
	}
	return &respondent, nil
}

// CreateRespondent создает респондента (POST /api/respondents)
func (c *Client) CreateRespondent(ctx context.Context, input *domain.RespondentInput) (*domain.Respondent, error) {
	var respondent domain.Respondent
	if err := c.do(ctx, http.MethodPost, "/api/respondents", nil, input, &respondent); err != nil {
		return nil, err
	}
	return &respondent, nil
}
