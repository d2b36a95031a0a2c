// Package jwt реализует выпуск и проверку подписанных сессионных токенов.
//
// Токен несёт subject (email пользователя) и абсолютный срок действия.
// Серверного хранилища сессий нет: токен действителен до истечения срока,
// смена секрета инвалидирует все выданные токены.
package jwt

import (
	"errors"
	"time"
)

// DefaultTTL время жизни токена, если в конфиге не задано иное.
const DefaultTTL = 30 * time.Minute

// ErrInvalidToken возвращается при любой ошибке проверки токена.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	// GenerateToken выпускает токен с TTL по умолчанию.
	GenerateToken(subject string) (string, error)
	// GenerateTokenWithTTL выпускает токен с заданным TTL.
	GenerateTokenWithTTL(subject string, ttl time.Duration) (string, error)
	// ParseToken проверяет токен и возвращает subject.
	ParseToken(tokenStr string) (string, error)
}

// MakerImpl реализует Maker на HMAC‑SHA256 с общим секретом.
type MakerImpl struct {
	secretKey []byte        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена по умолчанию.
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Неположительный ttl заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
