package tasktracker

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	"github.com/magabrotheeeer/task-tracker/internal/services/access"
)

var (
	adminUser = &models.User{ID: "admin-id", Email: "admin@example.com", Role: models.RoleAdmin}
	plainUser = &models.User{ID: "user-id", Email: "user@example.com", Role: models.RoleUser}
)

type fakeGuard struct{}

func (fakeGuard) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "admin-token":
		return adminUser, nil
	case "user-token":
		return plainUser, nil
	}
	return nil, models.NewError(models.ErrUnauthorized)
}

type fakeAuth struct{}

func (fakeAuth) Register(context.Context, *models.User, models.NewUser) (string, error) {
	return "new-user", nil
}

func (fakeAuth) Login(context.Context, string, string) (*models.LoginResult, error) {
	return &models.LoginResult{AccessToken: "tok", TokenType: "bearer"}, nil
}

func (fakeAuth) ListUsers(context.Context, *models.User) ([]models.User, error) {
	return []models.User{*adminUser}, nil
}

type fakeTasks struct{}

func (fakeTasks) Create(context.Context, *models.User, models.TaskDraft) (string, error) {
	return "t1", nil
}

func (fakeTasks) ListAll(context.Context, *models.User) ([]models.TaskView, error) {
	return []models.TaskView{}, nil
}

func (fakeTasks) Completed(context.Context, *models.User) ([]models.TaskView, error) {
	return []models.TaskView{}, nil
}

func (fakeTasks) Active(context.Context, *models.User) ([]models.TaskView, error) {
	return []models.TaskView{}, nil
}

func (fakeTasks) ListMine(context.Context, *models.User) ([]models.Task, error) {
	return []models.Task{}, nil
}

func (fakeTasks) Stats(context.Context, *models.User) (models.Stats, error) {
	return models.Stats{}, nil
}

func (fakeTasks) UpdateStatus(_ context.Context, actor *models.User, _ string, _ models.TaskStatus) error {
	if !actor.IsAdmin() && actor.ID != plainUser.ID {
		return models.NewError(models.ErrForbidden)
	}
	return nil
}

func (fakeTasks) DeleteUser(_ context.Context, requester *models.User, _ string) error {
	_, err := access.RequireAdmin(requester)
	return err
}

func newTestRouter(burst int) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	r := chi.NewRouter()
	RegisterRoutes(r, log, Deps{
		Auth:     fakeAuth{},
		Tasks:    fakeTasks{},
		Guard:    fakeGuard{},
		Limiter:  middlewarectx.NewIPRateLimiter(0.001, burst),
		Metrics:  metrics.New(registry),
		Gatherer: registry,
	})
	return r
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_AccessControl(t *testing.T) {
	router := newTestRouter(100)

	tests := []struct {
		method string
		path   string
		body   string
		anon   int
		user   int
		admin  int
	}{
		{http.MethodGet, "/", "", 200, 200, 200},
		{http.MethodGet, "/health", "", 200, 200, 200},
		{http.MethodPost, "/auth/register", `{"fullname":"A","email":"a@example.com","password":"p"}`, 401, 403, 200},
		{http.MethodGet, "/auth/users", "", 401, 403, 200},
		{http.MethodDelete, "/auth/users/some-id", "", 401, 403, 200},
		{http.MethodPost, "/tasks", `{"title":"x","assigned_to":"user-id"}`, 401, 403, 200},
		{http.MethodGet, "/tasks", "", 401, 403, 200},
		{http.MethodGet, "/tasks/my", "", 401, 200, 200},
		{http.MethodGet, "/tasks/stats", "", 401, 403, 200},
		{http.MethodGet, "/tasks/completed", "", 401, 403, 200},
		{http.MethodGet, "/tasks/active", "", 401, 403, 200},
		{http.MethodPut, "/tasks/t1/status", `{"status":"completed"}`, 401, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.anon, do(router, tt.method, tt.path, "", tt.body).Code, "anonymous")
			assert.Equal(t, tt.user, do(router, tt.method, tt.path, "user-token", tt.body).Code, "user")
			assert.Equal(t, tt.admin, do(router, tt.method, tt.path, "admin-token", tt.body).Code, "admin")
		})
	}
}

func TestRoutes_InvalidToken(t *testing.T) {
	router := newTestRouter(100)
	rec := do(router, http.MethodGet, "/tasks/my", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_LoginRateLimited(t *testing.T) {
	router := newTestRouter(2)
	body := `{"email":"a@example.com","password":"p"}`

	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/auth/login", "", body).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodPost, "/auth/login", "", body).Code)

	// остальные маршруты лимитом не затронуты
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/tasks/my", "user-token", "").Code)
}

func TestRoutes_Metrics(t *testing.T) {
	router := newTestRouter(100)
	do(router, http.MethodGet, "/health", "", "")

	rec := do(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `task_tracker_http_requests_total{code="200",method="GET",route="/health"} 1`))
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router := newTestRouter(100)
	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
