package httpapi

import (
	"context"
	"net/http"

	"github.com/aidar/participant-manager/internal/domain"
)

// CheckHealth запрашивает статус API (GET /health)
func (c *Client) CheckHealth(ctx context.Context) (*domain.Health, error) {
	var health domain.Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
