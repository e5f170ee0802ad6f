package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultSessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record behind the cookie. ExpiresAt is absolute
// and never extended by activity.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore returns ErrSessionNotFound from Get for missing and expired
// records alike. Delete of an unknown id is not an error.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type MemSessionStore struct {
	mu  sync.Mutex
	m   map[string]Session
	now func() time.Time
}

func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{
		m:   make(map[string]Session),
		now: time.Now,
	}
}

func (s *MemSessionStore) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[sess.ID] = sess
	return nil
}

func (s *MemSessionStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.expired(s.now()) {
		delete(s.m, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, id)
	return nil
}

func (s *MemSessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Prune drops every expired record and reports how many went.
func (s *MemSessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, sess := range s.m {
		if sess.expired(now) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Run prunes every interval until ctx is done.
func (s *MemSessionStore) Run(ctx context.Context, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Prune(); n > 0 && log != nil {
				log.Debug("expired sessions pruned", zap.Int("count", n))
			}
		}
	}
}
