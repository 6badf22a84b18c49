package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrPasswordTooShort = errors.New("password must contain at least 8 characters")
	ErrPasswordTooWeak  = errors.New("password must contain at least one letter and one digit")
	ErrUserNotFound     = errors.New("user not found")
	ErrForbidden        = errors.New("operation on another user's account is not allowed")
	ErrEmptyUpdate      = errors.New("no fields to update")
)

// UserStatus - состояние учетной записи.
type UserStatus string

// Состояния учетной записи.
const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// User представляет основную сущность домена пользователя.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive сообщает, может ли пользователь получать токены.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// UserChanges - частичное изменение профиля. nil означает "не менять".
type UserChanges struct {
	Email    *string
	Username *string
	Password *string
}

// IsEmpty сообщает, что изменений нет.
func (c UserChanges) IsEmpty() bool {
	return c.Email == nil && c.Username == nil && c.Password == nil
}
