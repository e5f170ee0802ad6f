package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	IsAdmin      bool
	CreatedAt    time.Time
}

// PublicUser is the only user shape that leaves the process.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// NewUser carries a plaintext password; stores hash it before persisting.
type NewUser struct {
	Username string
	Password string
	IsAdmin  bool
}

// UserStore lookups by username are exact and case-sensitive.
type UserStore interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	Create(ctx context.Context, in NewUser) (User, error)
}

// EnsureAdmin creates the admin account unless the username already exists.
func EnsureAdmin(ctx context.Context, users UserStore, username, password string) (created bool, err error) {
	_, found, err := users.GetByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if found {
		return false, nil
	}

	_, err = users.Create(ctx, NewUser{Username: username, Password: password, IsAdmin: true})
	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
