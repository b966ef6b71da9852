// Package auth provides password login and API token verification.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a token is malformed, expired or not signed by us.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAuthenticationRequired is returned when a write is attempted without a token.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrUserNotFound is returned by a UserStore when no user matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned by a UserStore when the username already exists.
	ErrUsernameTaken = errors.New("username already exists")
)

// User is an account that can upload datasets.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
