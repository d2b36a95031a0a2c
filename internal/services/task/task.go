// Package task реализует жизненный цикл задач: создание администратором,
// выборки с данными исполнителя, статистику, смену статуса и удаление
// пользователей без назначенных задач.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/task-tracker/internal/cache"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	"github.com/magabrotheeeer/task-tracker/internal/services/access"
)

// TaskRepository описывает хранилище задач.
type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	ListTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) ([]models.Task, error)
	CountTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) (int64, error)
	CountTasksByAssignee(ctx context.Context, userID string) (int64, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error
}

// UserRepository описывает нужные сервису операции над пользователями.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	CountUsersExcludingRole(ctx context.Context, role models.Role) (int64, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserCache сбрасывает закэшированного пользователя.
type UserCache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service бизнес‑логика задач.
type Service struct {
	log   *slog.Logger
	tasks TaskRepository
	users UserRepository
	cache UserCache
	now   func() time.Time
}

// NewService создаёт Service.
func NewService(log *slog.Logger, tasks TaskRepository, users UserRepository, userCache UserCache) *Service {
	return &Service{
		log:   log,
		tasks: tasks,
		users: users,
		cache: userCache,
		now:   time.Now,
	}
}

// Create создаёт задачу и возвращает её ID. Исполнитель должен существовать.
func (s *Service) Create(ctx context.Context, requester *models.User, draft models.TaskDraft) (string, error) {
	const op = "task.Create"

	if _, err := access.RequireAdmin(requester); err != nil {
		return "", err
	}
	if draft.Status != "" && !draft.Status.IsValid() {
		return "", invalidStatus()
	}
	if draft.Priority != "" && !draft.Priority.IsValid() {
		return "", models.Errorf(models.ErrInvalidArgument, "invalid priority %q", draft.Priority)
	}

	if _, err := s.users.GetUserByID(ctx, draft.AssignedTo); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.Errorf(models.ErrNotFound, "Assigned user not found")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	t := models.NewTask(uuid.New().String(), draft, requester.ID, s.now().UTC())
	if err := s.tasks.CreateTask(ctx, t); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.Errorf(models.ErrNotFound, "Assigned user not found")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("task created", sl.Op(op), slog.String("task_id", t.ID), slog.String("assigned_to", t.AssignedTo))
	return t.ID, nil
}

// ListAll возвращает все задачи с данными исполнителей.
func (s *Service) ListAll(ctx context.Context, requester *models.User) ([]models.TaskView, error) {
	const op = "task.ListAll"

	if _, err := access.RequireAdmin(requester); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.enrich(ctx, op, tasks)
}

// ListMine возвращает задачи, назначенные requester.
func (s *Service) ListMine(ctx context.Context, requester *models.User) ([]models.Task, error) {
	const op = "task.ListMine"

	if requester == nil {
		return nil, models.NewError(models.ErrUnauthorized)
	}
	tasks, err := s.tasks.ListTasksByAssignee(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// ListByStatus возвращает задачи с любым из статусов с данными исполнителей.
func (s *Service) ListByStatus(ctx context.Context, requester *models.User, statuses ...models.TaskStatus) ([]models.TaskView, error) {
	const op = "task.ListByStatus"

	if _, err := access.RequireAdmin(requester); err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, invalidStatus()
		}
	}
	if len(statuses) == 0 {
		return []models.TaskView{}, nil
	}

	tasks, err := s.tasks.ListTasksByStatus(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.enrich(ctx, op, tasks)
}

// Completed возвращает завершённые задачи.
func (s *Service) Completed(ctx context.Context, requester *models.User) ([]models.TaskView, error) {
	return s.ListByStatus(ctx, requester, models.StatusCompleted)
}

// Active возвращает незавершённые задачи.
func (s *Service) Active(ctx context.Context, requester *models.User) ([]models.TaskView, error) {
	return s.ListByStatus(ctx, requester, models.ActiveStatuses...)
}

// Stats считает пользователей без роли администратора, завершённые и активные задачи.
func (s *Service) Stats(ctx context.Context, requester *models.User) (models.Stats, error) {
	const op = "task.Stats"

	if _, err := access.RequireAdmin(requester); err != nil {
		return models.Stats{}, err
	}

	var stats models.Stats
	var err error
	if stats.TotalUsers, err = s.users.CountUsersExcludingRole(ctx, models.RoleAdmin); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.CompletedTasks, err = s.tasks.CountTasksByStatus(ctx, models.StatusCompleted); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.ActiveTasks, err = s.tasks.CountTasksByStatus(ctx, models.ActiveStatuses...); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// UpdateStatus меняет статус задачи. Проверки идут в порядке: задача
// существует, actor является исполнителем или администратором, статус допустим.
// Любой допустимый статус достижим из любого.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, taskID string, status models.TaskStatus) error {
	const op = "task.UpdateStatus"

	if actor == nil {
		return models.NewError(models.ErrUnauthorized)
	}

	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Errorf(models.ErrNotFound, "Task not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if t.AssignedTo != actor.ID && !actor.IsAdmin() {
		return models.Errorf(models.ErrForbidden, "You can only update your own tasks")
	}
	if !status.IsValid() {
		return invalidStatus()
	}

	if err := s.tasks.UpdateTaskStatus(ctx, taskID, status, s.now().UTC()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Errorf(models.ErrNotFound, "Task not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("task status updated",
		sl.Op(op),
		slog.String("task_id", taskID),
		slog.String("status", string(status)),
		slog.String("by", actor.ID),
	)
	return nil
}

// DeleteUser удаляет пользователя, если на него не назначено ни одной задачи.
// Проверки идут в порядке: права администратора, пользователь существует,
// это не сам администратор, у пользователя нет задач.
func (s *Service) DeleteUser(ctx context.Context, requester *models.User, userID string) error {
	const op = "task.DeleteUser"

	if _, err := access.RequireAdmin(requester); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Errorf(models.ErrNotFound, "User not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.ID == requester.ID {
		return models.Errorf(models.ErrInvalidArgument, "You cannot delete your own account")
	}

	count, err := s.tasks.CountTasksByAssignee(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return assignedTasksConflict(count)
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return models.Errorf(models.ErrNotFound, "User not found")
		case errors.Is(err, models.ErrConflict):
			// задачу назначили между подсчётом и удалением
			if count, cerr := s.tasks.CountTasksByAssignee(ctx, userID); cerr == nil && count > 0 {
				return assignedTasksConflict(count)
			}
			return models.Errorf(models.ErrConflict, "Cannot delete user. They have assigned tasks.")
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(ctx, cache.UserKey(user.Email)); err != nil {
		s.log.Warn("failed to invalidate cached user", sl.Op(op), slog.String("user_id", userID), sl.Err(err))
	}
	s.log.Info("user deleted", sl.Op(op), slog.String("user_id", userID), slog.String("by", requester.ID))
	return nil
}

func (s *Service) enrich(ctx context.Context, op string, tasks []models.Task) ([]models.TaskView, error) {
	views := make([]models.TaskView, 0, len(tasks))
	if len(tasks) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{}, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.AssignedTo]; !ok {
			seen[t.AssignedTo] = struct{}{}
			ids = append(ids, t.AssignedTo)
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, t := range tasks {
		views = append(views, models.NewTaskView(t, byID[t.AssignedTo]))
	}
	return views, nil
}

func invalidStatus() error {
	return models.Errorf(models.ErrInvalidArgument,
		"Invalid status. Must be one of: %s, %s, %s",
		models.StatusPending, models.StatusInProgress, models.StatusCompleted)
}

func assignedTasksConflict(count int64) error {
	return models.Errorf(models.ErrConflict,
		"Cannot delete user. They have %d assigned task(s). Please reassign or delete their tasks first.", count)
}
