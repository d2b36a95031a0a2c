// Package list реализует HTTP-обработчики администраторских выборок задач:
// все задачи, завершённые и активные. Задачи отдаются вместе с данными исполнителя.
package list

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

// Filter выбирает, какие задачи отдаёт Handler.
type Filter int

const (
	// All все задачи.
	All Filter = iota
	// Completed задачи в статусе completed.
	Completed
	// Active задачи в статусах pending и in_progress.
	Active
)

func (f Filter) String() string {
	switch f {
	case Completed:
		return "completed"
	case Active:
		return "active"
	default:
		return "all"
	}
}

// Service описывает выборки задач.
type Service interface {
	ListAll(ctx context.Context, requester *models.User) ([]models.TaskView, error)
	Completed(ctx context.Context, requester *models.User) ([]models.TaskView, error)
	Active(ctx context.Context, requester *models.User) ([]models.TaskView, error)
}

// Handler отдает задачи по фильтру.
type Handler struct {
	log     *slog.Logger
	service Service
	filter  Filter
}

// New создает Handler для заданного фильтра.
func New(log *slog.Logger, service Service, filter Filter) *Handler {
	return &Handler{log: log, service: service, filter: filter}
}

// ServeHTTP godoc
// @Summary Список задач
// @Description Все, завершенные или активные задачи с данными исполнителя. Только для администратора.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.TaskView}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /tasks [get]
// @Router /tasks/completed [get]
// @Router /tasks/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filter", h.filter.String()),
	)

	admin, _ := middlewarectx.UserFromContext(r.Context())

	var (
		tasks []models.TaskView
		err   error
	)
	switch h.filter {
	case Completed:
		tasks, err = h.service.Completed(r.Context(), admin)
	case Active:
		tasks, err = h.service.Active(r.Context(), admin)
	default:
		tasks, err = h.service.ListAll(r.Context(), admin)
	}
	if err != nil {
		if code := response.RenderError(w, r, err); code == http.StatusInternalServerError {
			log.Error("failed to list tasks", sl.Err(err))
		}
		return
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	render.JSON(w, r, response.OKWithData(tasks))
}
