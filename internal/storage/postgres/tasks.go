package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

const taskColumns = `id, title, description, assigned_to, due_date, status, priority,
	created_by, created_at, updated_at`

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var updatedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.DueDate,
		&t.Status, &t.Priority, &t.CreatedBy, &t.CreatedAt, &updatedAt)
	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	}
	return t, err
}

func statusStrings(statuses []models.TaskStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return out
}

// CreateTask сохраняет задачу. Если исполнителя нет, возвращается ErrNotFound.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) error {
	const op = "storage.postgres.CreateTask"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO tasks (id, title, description, assigned_to, due_date, status,
			      priority, created_by, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.AssignedTo, task.DueDate,
		task.Status, task.Priority, task.CreatedBy, task.CreatedAt)
	if isViolation(err, pgerrcode.ForeignKeyViolation) {
		return fmt.Errorf("%s: %w", op, models.Errorf(models.ErrNotFound, "assigned user %s not found", task.AssignedTo))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTask возвращает задачу по идентификатору.
func (s *Storage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const op = "storage.postgres.GetTask"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &t, nil
}

// ListTasks возвращает все задачи.
func (s *Storage) ListTasks(ctx context.Context) ([]models.Task, error) {
	const op = "storage.postgres.ListTasks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`
	return s.queryTasks(ctx, op, query)
}

// ListTasksByAssignee возвращает задачи, назначенные пользователю.
func (s *Storage) ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "storage.postgres.ListTasksByAssignee"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_to = $1 ORDER BY created_at, id`
	return s.queryTasks(ctx, op, query, userID)
}

// ListTasksByStatus возвращает задачи с любым из перечисленных статусов.
func (s *Storage) ListTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) ([]models.Task, error) {
	const op = "storage.postgres.ListTasksByStatus"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = ANY($1) ORDER BY created_at, id`
	return s.queryTasks(ctx, op, query, statusStrings(statuses))
}

func (s *Storage) queryTasks(ctx context.Context, op, query string, args ...any) ([]models.Task, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTasksByStatus считает задачи с любым из перечисленных статусов.
func (s *Storage) CountTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) (int64, error) {
	const op = "storage.postgres.CountTasksByStatus"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE status = ANY($1)`,
		statusStrings(statuses)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountTasksByAssignee считает задачи, назначенные пользователю.
func (s *Storage) CountTasksByAssignee(ctx context.Context, userID string) (int64, error) {
	const op = "storage.postgres.CountTasksByAssignee"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateTaskStatus меняет статус задачи и время обновления.
func (s *Storage) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error {
	const op = "storage.postgres.UpdateTaskStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
