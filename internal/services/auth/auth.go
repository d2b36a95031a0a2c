// Package auth содержит бизнес‑логику учётных записей: создание
// пользователей администратором, вход по email и паролю, список
// пользователей и создание первого администратора.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	"github.com/magabrotheeeer/task-tracker/internal/services/access"
)

// TokenTypeBearer тип токена в ответе на вход.
const TokenTypeBearer = "bearer"

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error

	// GetUserByEmail возвращает пользователя по email или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TokenIssuer выпускает сессионные токены.
type TokenIssuer interface {
	GenerateToken(subject string) (string, error)
}

// Notifier ставит письмо в очередь отправки без ожидания.
type Notifier interface {
	Dispatch(msg models.CredentialsMessage) bool
}

// Service отвечает за регистрацию и вход пользователей.
type Service struct {
	log      *slog.Logger
	users    UserRepository
	tokens   TokenIssuer
	notifier Notifier
	loginURL string
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(log *slog.Logger, users UserRepository, tokens TokenIssuer, notifier Notifier, loginURL string) *Service {
	return &Service{
		log:      log,
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		loginURL: loginURL,
		now:      time.Now,
	}
}

// Register создаёт пользователя от имени администратора и отправляет ему
// письмо с учётными данными. Возвращает ID нового пользователя.
func (s *Service) Register(ctx context.Context, requester *models.User, nu models.NewUser) (string, error) {
	const op = "auth.Register"

	if _, err := access.RequireAdmin(requester); err != nil {
		return "", err
	}
	if nu.Role == "" {
		nu.Role = models.RoleUser
	}
	if !nu.Role.IsValid() {
		return "", models.Errorf(models.ErrInvalidArgument, "invalid role %q", nu.Role)
	}
	if len(nu.Password) > password.MaxLength {
		return "", models.Errorf(models.ErrInvalidArgument, "password must be at most %d bytes", password.MaxLength)
	}

	_, err := s.users.GetUserByEmail(ctx, nu.Email)
	switch {
	case err == nil:
		return "", models.Errorf(models.ErrConflict, "User with this email already exists")
	case !errors.Is(err, models.ErrNotFound):
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(nu.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		ID:           uuid.New().String(),
		Email:        nu.Email,
		Fullname:     nu.Fullname,
		PasswordHash: hash,
		Role:         nu.Role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", models.Errorf(models.ErrConflict, "User with this email already exists")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Dispatch(models.CredentialsMessage{
		Email:    user.Email,
		Fullname: user.Fullname,
		Password: nu.Password,
		LoginURL: s.loginURL,
	})

	s.log.Info("user registered",
		sl.Op(op),
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("by", requester.ID),
	)
	return user.ID, nil
}

// Login проверяет пароль и выпускает токен. Неизвестный email и неверный
// пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.LoginResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Errorf(models.ErrInvalidCredentials, "Incorrect email or password")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(rawPassword, user.PasswordHash) {
		return nil, models.Errorf(models.ErrInvalidCredentials, "Incorrect email or password")
	}

	token, err := s.tokens.GenerateToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		UserID:      user.ID,
		Email:       user.Email,
		Fullname:    user.Fullname,
		Role:        user.Role,
	}, nil
}

// ListUsers возвращает всех пользователей. Только для администраторов.
func (s *Service) ListUsers(ctx context.Context, requester *models.User) ([]models.User, error) {
	const op = "auth.ListUsers"

	if _, err := access.RequireAdmin(requester); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// EnsureAdmin создаёт администратора с данным email, если такого
// пользователя ещё нет. Возвращает true, если пользователь создан.
func (s *Service) EnsureAdmin(ctx context.Context, email, rawPassword, fullname string) (bool, error) {
	const op = "auth.EnsureAdmin"

	if email == "" || rawPassword == "" {
		return false, models.Errorf(models.ErrInvalidArgument, "admin email and password are required")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, models.ErrNotFound):
		return false, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	err = s.users.CreateUser(ctx, models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Fullname:     fullname,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, models.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("admin user created", sl.Op(op), slog.String("email", email))
	return true, nil
}
