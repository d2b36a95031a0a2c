// Package tasktracker собирает HTTP API трекера задач: хранилище, кэш,
// доставку уведомлений, сервисы, маршруты и gRPC-проверку состояния.
package tasktracker

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/auth/remove"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/auth/users"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/root"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/create"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/list"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/my"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/stats"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/status"
	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
)

// AuthService операции с учётными записями, нужные маршрутам.
type AuthService interface {
	register.Service
	login.Service
	users.Service
}

// TaskService операции с задачами и удаление пользователей.
type TaskService interface {
	create.Service
	list.Service
	my.Service
	stats.Service
	status.Service
	remove.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Auth     AuthService
	Tasks    TaskService
	Guard    middlewarectx.Authenticator
	Limiter  *middlewarectx.IPRateLimiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/", root.Welcome)
	r.Get("/health", root.Health)

	authenticated := middlewarectx.Authenticate(d.Guard, logger)
	adminOnly := middlewarectx.AdminOnly(logger)

	r.Route("/auth", func(r chi.Router) {
		r.With(middlewarectx.RateLimitMiddleware(logger, d.Limiter)).
			Post("/login", login.New(logger, d.Auth).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
			r.Get("/users", users.New(logger, d.Auth).ServeHTTP)
			r.Delete("/users/{id}", remove.New(logger, d.Tasks).ServeHTTP)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/my", my.New(logger, d.Tasks).ServeHTTP)
		r.Put("/{id}/status", status.New(logger, d.Tasks).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", create.New(logger, d.Tasks).ServeHTTP)
			r.Get("/", list.New(logger, d.Tasks, list.All).ServeHTTP)
			r.Get("/completed", list.New(logger, d.Tasks, list.Completed).ServeHTTP)
			r.Get("/active", list.New(logger, d.Tasks, list.Active).ServeHTTP)
			r.Get("/stats", stats.New(logger, d.Tasks).ServeHTTP)
		})
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

