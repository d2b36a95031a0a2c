package tasktracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/task-tracker/internal/cache"
	"github.com/magabrotheeeer/task-tracker/internal/config"
	grpcserver "github.com/magabrotheeeer/task-tracker/internal/grpc/server"
	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/task-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	"github.com/magabrotheeeer/task-tracker/internal/services/access"
	"github.com/magabrotheeeer/task-tracker/internal/services/auth"
	"github.com/magabrotheeeer/task-tracker/internal/services/notification"
	"github.com/magabrotheeeer/task-tracker/internal/services/sender"
	"github.com/magabrotheeeer/task-tracker/internal/services/task"
	"github.com/magabrotheeeer/task-tracker/internal/storage"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthProbeInterval = 10 * time.Second
)

type userCache interface {
	access.UserCache
	task.UserCache
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// App HTTP API трекера задач.
type App struct {
	server     *http.Server
	health     *grpcserver.HealthServer
	dispatcher *notification.Dispatcher
	logger     *slog.Logger
	closers    []closer
}

// New поднимает все зависимости и собирает маршруты. При ошибке уже
// открытые соединения закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	const op = "tasktracker.New"

	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	store, closeStore, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, closer{"storage", closeStore})

	var users userCache = cache.Noop{}
	if cfg.RedisAddress != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, closer{"redis", func(context.Context) error { return redisCache.Close() }})
		users = redisCache
	} else {
		logger.Info("redis address is empty, user cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	deliverer, err := a.newDeliverer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.dispatcher = notification.NewDispatcher(logger, deliverer, appMetrics, cfg.Workers, cfg.QueueSize)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	guard := access.NewGuard(logger, jwtMaker, store, users, cfg.UserCacheTTL)
	authService := auth.NewService(logger, store, jwtMaker, a.dispatcher, cfg.LoginURL)
	taskService := task.NewService(logger, store, store, users)

	if cfg.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminFullname)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("bootstrap admin checked", slog.String("email", cfg.AdminEmail), slog.Bool("created", created))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:     authService,
		Tasks:    taskService,
		Guard:    guard,
		Limiter:  middlewarectx.NewIPRateLimiter(cfg.LoginRPS, cfg.LoginBurst),
		Metrics:  appMetrics,
		Gatherer: registry,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.GRPCAddress != "" {
		a.health, err = grpcserver.Listen(cfg.GRPCAddress, store.Ping, healthProbeInterval, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return a, nil
}

// newDeliverer выбирает способ доставки писем: очередь RabbitMQ, если
// задан URL брокера, иначе отправка по SMTP прямо из процесса.
func (a *App) newDeliverer(ctx context.Context, cfg *config.Config) (notification.Deliverer, error) {
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer{"rabbitmq connection", func(context.Context) error { return conn.Close() }})

		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer{"rabbitmq channel", func(context.Context) error { return ch.Close() }})

		a.logger.Info("credential emails go through rabbitmq", slog.String("queue", rabbitmq.CredentialsQueue))
		return notification.NewQueueDeliverer(rabbitmq.NewPublisher(ch, rabbitmq.Exchange, rabbitmq.CredentialsRoutingKey)), nil
	}

	var transport smtp.TransportInterface
	if cfg.SMTPHost != "" {
		transport = smtp.NewTransport(cfg.SMTP, a.logger)
	} else {
		a.logger.Warn("smtp host is empty, credential emails are simulated")
	}
	return sender.New(a.logger, transport, cfg.SMTPFromName), nil
}

// Run обслуживает HTTP и gRPC до отмены ctx, затем останавливается
// в пределах shutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	a.dispatcher.Start(context.WithoutCancel(ctx))

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	if a.health != nil {
		go func() {
			if err := a.health.Run(healthCtx); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	stopHealth()
	a.dispatcher.Stop()
	a.close(timeoutCtx)
	return runErr
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.Error("failed to close", slog.String("resource", c.name), sl.Err(err))
		}
	}
	a.closers = nil
}
