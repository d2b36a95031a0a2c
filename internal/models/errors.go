package models

import (
	"errors"
	"fmt"
)

// Виды ошибок. Проверяются через errors.Is.
var (
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("the user does not have enough privileges")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// Error доменная ошибка с безопасным для клиента сообщением.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf создаёт доменную ошибку заданного вида.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewError создаёт доменную ошибку, сообщение которой совпадает с текстом вида.
func NewError(kind error) error {
	return &Error{Kind: kind, Msg: kind.Error()}
}
