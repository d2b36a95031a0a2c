// Package models содержит доменные структуры трекера задач: пользователя,
// задачу, сообщения уведомлений и таксономию ошибок. Структуры используются
// в бизнес‑логике, хранилищах и HTTP‑слое.
package models

import "time"

// Role уровень доступа пользователя.
type Role string

const (
	// RoleUser обычный пользователь, видит и обновляет только свои задачи.
	RoleUser Role = "user"
	// RoleAdmin администратор, управляет пользователями и задачами.
	RoleAdmin Role = "admin"
)

// IsValid сообщает, входит ли роль в допустимый набор.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User представляет учётную запись пользователя.
type User struct {
	ID           string    `json:"id" bson:"_id"`                // Уникальный идентификатор (UUID)
	Email        string    `json:"email" bson:"email"`           // Электронная почта, уникальный ключ поиска
	Fullname     string    `json:"fullname" bson:"fullname"`     // Полное имя
	PasswordHash string    `json:"-" bson:"password"`            // bcrypt‑хэш пароля, наружу не отдаётся
	Role         Role      `json:"role" bson:"role"`             // Роль: user или admin
	CreatedAt    time.Time `json:"created_at" bson:"created_at"` // Дата создания
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NewUser данные для создания пользователя администратором.
type NewUser struct {
	Fullname string
	Email    string
	Password string
	Role     Role
}

// LoginResult возвращается при успешном входе.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Fullname    string `json:"fullname"`
	Role        Role   `json:"role"`
}
