// Package stats реализует HTTP-обработчик статистики для панели администратора.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Handler отдает агрегированные счетчики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает подсчет статистики.
type Service interface {
	Stats(ctx context.Context, requester *models.User) (models.Stats, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика
// @Description Количество пользователей без роли администратора, завершенных и активных задач.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Stats}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /tasks/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.stats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	admin, _ := middlewarectx.UserFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), admin)
	if err != nil {
		if code := response.RenderError(w, r, err); code == http.StatusInternalServerError {
			log.Error("failed to count stats", sl.Err(err))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(stats))
}
