// Package status реализует HTTP-обработчик смены статуса задачи.
//
// Статус в теле запроса не валидируется здесь: сервис сначала проверяет
// существование задачи и права, и только потом допустимость статуса.
package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Request новый статус задачи.
type Request struct {
	Status string `json:"status" example:"in_progress"`
}

// Handler меняет статус задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает смену статуса.
type Service interface {
	UpdateStatus(ctx context.Context, actor *models.User, taskID string, status models.TaskStatus) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновить статус задачи
// @Description Исполнитель или администратор переводит задачу в любой допустимый статус.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Недопустимый статус"
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Чужая задача"
// @Failure 404 {object} response.ErrorResponse "Задача не найдена"
// @Router /tasks/{id}/status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	taskID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, _ := middlewarectx.UserFromContext(r.Context())
	if err := h.service.UpdateStatus(r.Context(), user, taskID, models.TaskStatus(req.Status)); err != nil {
		if code := response.RenderError(w, r, err); code == http.StatusInternalServerError {
			log.Error("failed to update task status", sl.Err(err))
		} else {
			log.Info("status update rejected", slog.String("task_id", taskID), sl.Err(err))
		}
		return
	}

	log.Info("task status updated", slog.String("task_id", taskID), slog.String("status", req.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Task status updated successfully",
	}))
}
