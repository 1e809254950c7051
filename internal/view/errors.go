// Package view holds the per-page controllers of the dashboard. A view is
// created when a page is opened, owns its filter, pagination and selection
// state, fetches data through the repositories and exposes an immutable
// snapshot for rendering. Views are never shared between page requests.
package view

import (
	"errors"

	"github.com/aidar/participant-manager/internal/domain"
)

// ErrAssignInProgress is returned when Assign is called while a previous
// assignment of the same view has not finished.
var ErrAssignInProgress = errors.New("assignment already in progress")

// ErrorInfo describes the last failure of a view for rendering.
type ErrorInfo struct {
	Code    domain.ErrorCode `json:"code"`
	Kind    string           `json:"kind,omitempty"`
	Status  int              `json:"status,omitempty"`
	Message string           `json:"message"`
}

// NewErrorInfo converts err into ErrorInfo. It returns nil for a nil error.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{
		Code:    domain.MapErrorToCode(err),
		Status:  domain.StatusOf(err),
		Message: err.Error(),
	}
	if kind := domain.KindOf(err); kind != 0 {
		info.Kind = kind.String()
	}
	return info
}
