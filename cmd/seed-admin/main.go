// Команда seed-admin создаёт учётную запись администратора, если её ещё нет.
// Email и пароль берутся из bootstrap_admin конфига, флаги их переопределяют.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/task-tracker/internal/config"
	"github.com/magabrotheeeer/task-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	"github.com/magabrotheeeer/task-tracker/internal/services/auth"
	"github.com/magabrotheeeer/task-tracker/internal/storage"
)

type discardNotifier struct{}

func (discardNotifier) Dispatch(models.CredentialsMessage) bool { return false }

func main() {
	cfg := config.MustLoad()

	email := flag.String("email", cfg.AdminEmail, "admin email")
	password := flag.String("password", cfg.AdminPassword, "admin password")
	fullname := flag.String("fullname", cfg.AdminFullname, "admin full name")
	flag.Parse()

	logger := sl.New(cfg.Env, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}()

	authService := auth.NewService(logger, store, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), discardNotifier{}, cfg.LoginURL)
	created, err := authService.EnsureAdmin(ctx, *email, *password, *fullname)
	if err != nil {
		logger.Error("failed to create admin", sl.Err(err))
		cancel()
		os.Exit(1)
	}

	if created {
		logger.Info("admin user created", slog.String("email", *email))
	} else {
		logger.Info("admin user already exists", slog.String("email", *email))
	}
}
