package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is taken")
	ErrUsernameTaken      = errors.New("username is taken")
	ErrInvalidCredentials = errors.New("wrong credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrURLExists          = errors.New("url already exists")
	ErrBookmarkNotFound   = errors.New("bookmark not found")
	ErrPageNotFound       = errors.New("page not found")
	ErrShortCodeExhausted = errors.New("no free short code found")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// isUniqueViolation recognises unique-constraint failures from postgres and
// sqlite, translated by gorm or not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
