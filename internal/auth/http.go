package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SupremeFabrics/pkg/kit"
)

const (
	maxBodyBytes        = 1 << 20
	minPasswordLen      = 8
	maxPasswordLen      = 72 // bcrypt input limit
	loginLimitPerMin    = 10
	registerLimitPerMin = 3
	limitWindow         = 60 * time.Second
)

type Server struct {
	Gate *Gate
	Log  *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	registerLimiter := kit.NewIPRateLimiter(registerLimitPerMin, limitWindow)

	r.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
	r.With(registerLimiter.Middleware).Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Get("/me", s.handleMe)

	return r
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResp struct {
	Success bool       `json:"success,omitempty"`
	User    PublicUser `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.BadJSON(w, r, "invalid login data", err)
		return
	}

	var vs []kit.Violation
	if req.Username == "" {
		vs = append(vs, kit.Violation{Field: "username", Message: "is required"})
	}
	if req.Password == "" {
		vs = append(vs, kit.Violation{Field: "password", Message: "is required"})
	}
	if len(vs) > 0 {
		kit.WriteViolations(w, r, "username and password are required", vs)
		return
	}

	u, err := s.Gate.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "login failed", err)
		return
	}

	if _, err := s.Gate.StartSession(w, r, u); err != nil {
		kit.WriteServerError(w, r, s.Log, "start session failed", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("login", zap.String("user_id", u.ID), zap.Bool("admin", u.IsAdmin))
	}
	kit.WriteJSON(w, http.StatusOK, userResp{Success: true, User: u.Public()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Gate.EndSession(w, r); err != nil {
		kit.WriteServerError(w, r, s.Log, "logout failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok, err := s.Gate.CurrentUser(r)
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "current user failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, userResp{User: u.Public()})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.BadJSON(w, r, "invalid registration data", err)
		return
	}

	var vs []kit.Violation
	if strings.TrimSpace(req.Username) == "" {
		vs = append(vs, kit.Violation{Field: "username", Message: "is required"})
	} else if req.Username != strings.TrimSpace(req.Username) {
		vs = append(vs, kit.Violation{Field: "username", Message: "must not start or end with whitespace"})
	}
	switch {
	case len(req.Password) < minPasswordLen:
		vs = append(vs, kit.Violation{Field: "password", Message: "must be at least 8 characters"})
	case len(req.Password) > maxPasswordLen:
		vs = append(vs, kit.Violation{Field: "password", Message: "must be at most 72 bytes"})
	}
	if len(vs) > 0 {
		kit.WriteViolations(w, r, "invalid registration data", vs)
		return
	}

	u, err := s.Gate.Users.Create(r.Context(), NewUser{Username: req.Username, Password: req.Password})
	if errors.Is(err, ErrUsernameTaken) {
		kit.WriteError(w, r, http.StatusConflict, ErrUsernameTaken.Error(), nil)
		return
	}
	if err != nil {
		kit.WriteServerError(w, r, s.Log, "register failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, userResp{Success: true, User: u.Public()})
}
