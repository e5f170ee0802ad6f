package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"SupremeFabrics/pkg/kit"
)

const CookieName = "sf.session"

// Gate ties users, sessions and the session cookie together.
type Gate struct {
	Users    UserStore
	Sessions SessionStore
	Signer   *CookieSigner
	TTL      time.Duration
	// Secure marks the cookie HTTPS-only; set it in production.
	Secure bool
	Log    *zap.Logger

	now func() time.Time
}

func (g *Gate) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

func (g *Gate) ttl() time.Duration {
	if g.TTL > 0 {
		return g.TTL
	}
	return DefaultSessionTTL
}

// Login checks credentials. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials.
func (g *Gate) Login(ctx context.Context, username, password string) (User, error) {
	u, found, err := g.Users.GetByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if !found {
		burnCompare(password)
		return User{}, ErrInvalidCredentials
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// StartSession drops any session the request arrived with, then issues a
// fresh id for u and sets the cookie.
func (g *Gate) StartSession(w http.ResponseWriter, r *http.Request, u User) (Session, error) {
	if sid, ok := g.cookieSID(r); ok {
		if err := g.Sessions.Delete(r.Context(), sid); err != nil {
			return Session{}, fmt.Errorf("drop previous session: %w", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("session id: %w", err)
	}

	sess := Session{
		ID:        id,
		UserID:    u.ID,
		IsAdmin:   u.IsAdmin,
		ExpiresAt: g.clock().Add(g.ttl()),
	}
	if err := g.Sessions.Save(r.Context(), sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	value, err := g.Signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		return Session{}, fmt.Errorf("sign cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(g.ttl().Seconds()),
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return sess, nil
}

// EndSession destroys the record, if any, and clears the cookie.
func (g *Gate) EndSession(w http.ResponseWriter, r *http.Request) error {
	if sid, ok := g.cookieSID(r); ok {
		if err := g.Sessions.Delete(r.Context(), sid); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (g *Gate) cookieSID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	sid, err := g.Signer.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return sid, true
}

// Session resolves the request's cookie to a live session.
func (g *Gate) Session(r *http.Request) (Session, bool, error) {
	sid, ok := g.cookieSID(r)
	if !ok {
		return Session{}, false, nil
	}

	sess, err := g.Sessions.Get(r.Context(), sid)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// CurrentUser resolves the session's user. A session whose user no longer
// exists counts as no session.
func (g *Gate) CurrentUser(r *http.Request) (User, bool, error) {
	sess, ok, err := g.Session(r)
	if err != nil || !ok {
		return User{}, false, err
	}
	return g.Users.Get(r.Context(), sess.UserID)
}

func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := g.Session(r)
		if err != nil {
			kit.WriteServerError(w, r, g.Log, "session lookup failed", err)
			return
		}
		if !ok || sess.UserID == "" || !sess.IsAdmin {
			kit.WriteError(w, r, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
