package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/view"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// StatusForError возвращает HTTP статус для ошибки представления
func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrStudyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrAssignInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrServerError), errors.Is(err, domain.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MessageForError возвращает текст ошибки для пользователя
func MessageForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrStudyNotFound):
		return "study not found"
	case errors.Is(err, domain.ErrEmptySelection):
		return "no respondents selected"
	case errors.Is(err, view.ErrAssignInProgress):
		return "assignment already in progress"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "research API is unavailable"
	case errors.Is(err, domain.ErrServerError):
		return "research API returned an error"
	case errors.Is(err, domain.ErrDecode):
		return "research API returned an invalid response"
	default:
		return "internal server error"
	}
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithError(w, r, StatusForError(err), string(domain.MapErrorToCode(err)), MessageForError(err))
}

// FlashForError возвращает описание ошибки для баннера на странице
func FlashForError(err error) *view.ErrorInfo {
	info := view.NewErrorInfo(err)
	if info != nil {
		info.Message = MessageForError(err)
	}
	return info
}
