package handler

import (
	"bytes"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// WantsJSON сообщает запросил ли клиент JSON через заголовок Accept
func WantsJSON(r *http.Request) bool {
	return render.GetAcceptedContentType(r) == render.ContentTypeJSON
}

// RespondWithPage отправляет снимок представления: JSON для API клиентов,
// HTML страницу для браузера
func RespondWithPage(w http.ResponseWriter, r *http.Request, pages *Renderer, statusCode int, name string, data Page) {
	if WantsJSON(r) {
		RespondWithJSON(w, r, statusCode, data.View)
		return
	}

	var buf bytes.Buffer
	if err := pages.Render(&buf, name, data); err != nil {
		pages.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		RespondWithError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to render page")
		return
	}

	render.Status(r, statusCode)
	render.HTML(w, r, buf.String())
}

// Redirect перенаправляет браузер после успешной формы (POST/redirect/GET)
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
