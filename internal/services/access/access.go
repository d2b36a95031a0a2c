// Package access проверяет сессионные токены и права доступа.
//
// Любая ошибка аутентификации (подпись, срок, отсутствующий пользователь)
// наружу выглядит одинаково: models.ErrUnauthorized. Причина пишется в лог.
package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-tracker/internal/cache"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// TokenParser проверяет токен и возвращает subject.
type TokenParser interface {
	ParseToken(tokenStr string) (string, error)
}

// UserLookup ищет пользователя по email.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserCache кэширует найденных пользователей.
type UserCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Guard аутентифицирует запросы по токену.
type Guard struct {
	log      *slog.Logger
	tokens   TokenParser
	users    UserLookup
	cache    UserCache
	cacheTTL time.Duration
}

// NewGuard создаёт Guard. cache может быть cache.Noop.
func NewGuard(log *slog.Logger, tokens TokenParser, users UserLookup, userCache UserCache, cacheTTL time.Duration) *Guard {
	return &Guard{
		log:      log,
		tokens:   tokens,
		users:    users,
		cache:    userCache,
		cacheTTL: cacheTTL,
	}
}

// Authenticate проверяет токен и возвращает текущего пользователя.
func (g *Guard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "access.Authenticate"
	log := g.log.With(sl.Op(op))

	email, err := g.tokens.ParseToken(token)
	if err != nil {
		log.Debug("token rejected", sl.Err(err))
		return nil, models.NewError(models.ErrUnauthorized)
	}

	var cached models.User
	found, err := g.cache.Get(ctx, cache.UserKey(email), &cached)
	if err != nil {
		log.Warn("user cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := g.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Error("failed to load user", sl.Err(err))
		}
		return nil, models.NewError(models.ErrUnauthorized)
	}

	if err := g.cache.Set(ctx, cache.UserKey(email), user, g.cacheTTL); err != nil {
		log.Warn("user cache write failed", sl.Err(err))
	}
	return user, nil
}

// RequireAdmin пропускает только администраторов.
func RequireAdmin(user *models.User) (*models.User, error) {
	if !user.IsAdmin() {
		return nil, models.NewError(models.ErrForbidden)
	}
	return user, nil
}
