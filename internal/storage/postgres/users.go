package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

const userColumns = `uid, email, fullname, password_hash, role, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Fullname, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser сохраняет нового пользователя. Занятый email даёт ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.postgres.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (uid, email, fullname, password_hash, role, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Email, user.Fullname, user.PasswordHash, user.Role, user.CreatedAt)
	if isViolation(err, pgerrcode.UniqueViolation) {
		return fmt.Errorf("%s: %w", op, models.Errorf(models.ErrConflict, "email %s is already registered", user.Email))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &u, nil
}

// GetUsersByIDs возвращает найденных пользователей из списка ids одним запросом.
func (s *Storage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	const op = "storage.postgres.GetUsersByIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = ANY($1)`
	return s.queryUsers(ctx, op, query, ids)
}

// ListUsers возвращает всех пользователей в порядке создания.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgres.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, uid`
	return s.queryUsers(ctx, op, query)
}

func (s *Storage) queryUsers(ctx context.Context, op, query string, args ...any) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUser удаляет пользователя. Пользователя, на которого ссылаются
// задачи, удалить нельзя: возвращается ErrConflict.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, id)
	if isViolation(err, pgerrcode.ForeignKeyViolation) {
		return fmt.Errorf("%s: %w", op, models.Errorf(models.ErrConflict, "user %s still has assigned tasks", id))
	}
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

// CountUsersExcludingRole считает пользователей, чья роль отличается от role.
func (s *Storage) CountUsersExcludingRole(ctx context.Context, role models.Role) (int64, error) {
	const op = "storage.postgres.CountUsersExcludingRole"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role <> $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
