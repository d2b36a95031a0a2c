package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/task-tracker/internal/migrations"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB))
	return storage
}

func newUser(email string, role models.Role) models.User {
	return models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Fullname:     "User " + email,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newTask(assignee string, status models.TaskStatus) models.Task {
	return models.NewTask(uuid.New().String(), models.TaskDraft{
		Title:      "task",
		AssignedTo: assignee,
		Status:     status,
	}, "admin-id", time.Now().UTC())
}

func TestStorage_Users(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	admin := newUser("admin@example.com", models.RoleAdmin)
	alice := newUser("alice@example.com", models.RoleUser)
	bob := newUser("bob@example.com", models.RoleUser)
	for _, u := range []models.User{admin, alice, bob} {
		require.NoError(t, storage.CreateUser(ctx, u))
	}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := newUser(alice.Email, models.RoleUser)
		err := storage.CreateUser(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("email lookup is case sensitive", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "ALICE@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("get by email and id", func(t *testing.T) {
		got, err := storage.GetUserByEmail(ctx, alice.Email)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		got, err = storage.GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, bob.Email, got.Email)

		_, err = storage.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("batch lookup skips unknown ids", func(t *testing.T) {
		got, err := storage.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "missing"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("list and count", func(t *testing.T) {
		users, err := storage.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 3)

		count, err := storage.CountUsersExcludingRole(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.DeleteUser(ctx, bob.ID))
		assert.ErrorIs(t, storage.DeleteUser(ctx, bob.ID), models.ErrNotFound)
	})
}

func TestStorage_Tasks(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	alice := newUser("alice@example.com", models.RoleUser)
	bob := newUser("bob@example.com", models.RoleUser)
	require.NoError(t, storage.CreateUser(ctx, alice))
	require.NoError(t, storage.CreateUser(ctx, bob))

	pending := newTask(alice.ID, "")
	progress := newTask(alice.ID, models.StatusInProgress)
	done := newTask(bob.ID, models.StatusCompleted)
	for _, task := range []models.Task{pending, progress, done} {
		require.NoError(t, storage.CreateTask(ctx, task))
	}

	t.Run("unknown assignee is rejected", func(t *testing.T) {
		err := storage.CreateTask(ctx, newTask("missing", ""))
		assert.ErrorIs(t, err, models.ErrNotFound)

		all, err := storage.ListTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("get task keeps defaults", func(t *testing.T) {
		got, err := storage.GetTask(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, models.PriorityMedium, got.Priority)
		assert.Nil(t, got.UpdatedAt)

		_, err = storage.GetTask(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("filters and counts", func(t *testing.T) {
		mine, err := storage.ListTasksByAssignee(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		active, err := storage.ListTasksByStatus(ctx, models.ActiveStatuses...)
		require.NoError(t, err)
		assert.Len(t, active, 2)

		completed, err := storage.CountTasksByStatus(ctx, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, int64(1), completed)

		count, err := storage.CountTasksByAssignee(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("update status", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, storage.UpdateTaskStatus(ctx, pending.ID, models.StatusCompleted, now))

		got, err := storage.GetTask(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, got.Status)
		require.NotNil(t, got.UpdatedAt)

		err = storage.UpdateTaskStatus(ctx, "missing", models.StatusCompleted, now)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("referenced user cannot be deleted", func(t *testing.T) {
		err := storage.DeleteUser(ctx, alice.ID)
		assert.ErrorIs(t, err, models.ErrConflict)

		_, err = storage.GetUserByID(ctx, alice.ID)
		assert.NoError(t, err)
	})
}
