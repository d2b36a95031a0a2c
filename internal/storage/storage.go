// Package storage выбирает хранилище пользователей и задач по конфигурации.
//
// Поддерживаются PostgreSQL (со схемой из встроенных миграций) и MongoDB.
// Оба бэкенда реализуют один набор методов и возвращают ошибки вида
// models.ErrNotFound и models.ErrConflict.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-tracker/internal/config"
	"github.com/magabrotheeeer/task-tracker/internal/migrations"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	"github.com/magabrotheeeer/task-tracker/internal/storage/mongostore"
	"github.com/magabrotheeeer/task-tracker/internal/storage/postgres"
)

// Store общий набор операций обоих бэкендов.
type Store interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsersExcludingRole(ctx context.Context, role models.Role) (int64, error)

	CreateTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	ListTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) ([]models.Task, error)
	CountTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) (int64, error)
	CountTasksByAssignee(ctx context.Context, userID string) (int64, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error

	Ping(ctx context.Context) error
}

var (
	_ Store = (*postgres.Storage)(nil)
	_ Store = (*mongostore.Storage)(nil)
)

// CloseFunc освобождает соединения хранилища.
type CloseFunc func(ctx context.Context) error

// Open подключается к хранилищу, выбранному в cfg.Driver.
// Для PostgreSQL перед возвратом применяются миграции.
func Open(ctx context.Context, cfg config.Storage, log *slog.Logger) (Store, CloseFunc, error) {
	const op = "storage.Open"

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := migrations.Run(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("storage ready", slog.String("driver", cfg.Driver))
		return db, func(context.Context) error { return db.Close() }, nil

	case config.DriverMongo:
		db, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("storage ready", slog.String("driver", cfg.Driver), slog.String("database", cfg.MongoDatabase))
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Driver)
}
