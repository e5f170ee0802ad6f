package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemUserStore struct {
	mu         sync.RWMutex
	byID       map[string]User
	byUsername map[string]string
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		byID:       make(map[string]User),
		byUsername: make(map[string]string),
	}
}

func (s *MemUserStore) Ping(ctx context.Context) error { return nil }

func (s *MemUserStore) Get(ctx context.Context, id string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	return u, ok, nil
}

func (s *MemUserStore) GetByUsername(ctx context.Context, username string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return User{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *MemUserStore) Create(ctx context.Context, in NewUser) (User, error) {
	// hash outside the lock, bcrypt is slow
	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[in.Username]; ok {
		return User{}, ErrUsernameTaken
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	s.byUsername[u.Username] = u.ID
	return u, nil
}
