// Package create реализует HTTP-обработчик создания задачи администратором.
//
// Handler принимает JSON с данными задачи, валидирует его, берёт администратора
// из контекста и возвращает ID созданной задачи.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Request данные новой задачи. Пустые status и priority заменяются
// значениями по умолчанию.
type Request struct {
	Title       string `json:"title" validate:"required" example:"Design Landing Page"`
	Description string `json:"description" example:"Create a responsive landing page design"`
	AssignedTo  string `json:"assigned_to" validate:"required" example:"5b0c0f3e-6f0b-4bde-9d1f-1f2d1c3e4a5b"`
	DueDate     string `json:"due_date" example:"2026-02-15"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed" example:"pending"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent" example:"medium"`
}

// Handler управляет HTTP-запросами на создание задач.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики задач
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания задачи.
type Service interface {
	Create(ctx context.Context, requester *models.User, draft models.TaskDraft) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать задачу
// @Description Создает задачу и назначает ее пользователю. Только для администратора.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные задачи"
// @Success 200 {object} response.Response "Задача создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Исполнитель не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /tasks [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	admin, _ := middlewarectx.UserFromContext(r.Context())
	id, err := h.service.Create(r.Context(), admin, models.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.Priority(req.Priority),
	})
	if err != nil {
		if code := response.RenderError(w, r, err); code == http.StatusInternalServerError {
			log.Error("failed to create task", sl.Err(err))
		} else {
			log.Info("task creation rejected", sl.Err(err))
		}
		return
	}

	log.Info("task created", slog.String("task_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Task created successfully",
		"task_id": id,
	}))
}
