package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

const userColumns = `id, username, password_hash, is_admin, created_at`

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresUserStore) Get(ctx context.Context, id string) (User, bool, error) {
	return s.getBy(ctx, "id", id)
}

func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (User, bool, error) {
	return s.getBy(ctx, "username", username)
}

func (s *PostgresUserStore) getBy(ctx context.Context, column, v string) (User, bool, error) {
	var u User
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE `+column+` = $1
		`, v).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, true, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, in NewUser) (User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5)
		`, u.ID, u.Username, u.PasswordHash, u.IsAdmin, u.CreatedAt)
		return err
	})
	if isUniqueViolation(err) {
		return User{}, ErrUsernameTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
