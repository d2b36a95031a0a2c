// Package password реализует хеширование и проверку паролей на bcrypt.
//
// GetHash создаёт хэш с новой солью при каждом вызове, поэтому хэши
// одного и того же пароля различаются и не сравниваются напрямую.
// Verify повторно выводит хэш из пароля и соли, сохранённой в хэше.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength максимальная длина пароля в байтах, которую принимает bcrypt.
const MaxLength = 72

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Verify сообщает, соответствует ли пароль хэшу.
// Несовпадение и повреждённый хэш одинаково дают false.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
