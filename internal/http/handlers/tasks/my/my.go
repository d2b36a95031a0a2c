// Package my реализует HTTP-обработчик задач, назначенных текущему пользователю.
package my

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

// Handler отдает задачи текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку своих задач.
type Service interface {
	ListMine(ctx context.Context, requester *models.User) ([]models.Task, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои задачи
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Task}
// @Failure 401 {object} response.ErrorResponse
// @Router /tasks/my [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.my"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, _ := middlewarectx.UserFromContext(r.Context())
	tasks, err := h.service.ListMine(r.Context(), user)
	if err != nil {
		if code := response.RenderError(w, r, err); code == http.StatusInternalServerError {
			log.Error("failed to list own tasks", sl.Err(err))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(tasks))
}
