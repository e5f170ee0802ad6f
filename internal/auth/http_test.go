package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SupremeFabrics/internal/auth"
)

type fixture struct {
	ts       *httptest.Server
	sessions *auth.MemSessionStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	users := auth.NewMemUserStore()
	if _, err := auth.EnsureAdmin(context.Background(), users, "admin", "password"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := users.Create(context.Background(), auth.NewUser{Username: "viewer", Password: "viewer-pass"}); err != nil {
		t.Fatalf("seed viewer: %v", err)
	}

	sessions := auth.NewMemSessionStore()
	gate := &auth.Gate{
		Users:    users,
		Sessions: sessions,
		Signer:   auth.NewCookieSigner("test-secret"),
		Log:      zap.NewNop(),
	}
	s := &auth.Server{Gate: gate, Log: zap.NewNop()}

	r := chi.NewRouter()
	r.Mount("/api/auth", s.Routes())
	r.With(gate.RequireAdmin).Post("/admin-only", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return fixture{ts: ts, sessions: sessions}
}

func (f fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.CookieName)
	return nil
}

func (f fixture) login(t *testing.T, username, password string, prev *http.Cookie) *http.Cookie {
	t.Helper()

	resp, raw := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username, "password": password,
	}, prev)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d body=%s", resp.StatusCode, raw)
	}
	return sessionCookie(t, resp)
}

func TestAuth_LoginSetsSessionCookie(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin", "password": "password",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	var body struct {
		Success bool            `json:"success"`
		User    auth.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.User.Username != "admin" || !body.User.IsAdmin {
		t.Fatalf("body=%s", raw)
	}
	if bytes.Contains(raw, []byte("password")) || bytes.Contains(raw, []byte("$2a$")) {
		t.Fatalf("credentials leaked: %s", raw)
	}

	c := sessionCookie(t, resp)
	if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode || c.MaxAge != 86400 || c.Secure || c.Path != "/" {
		t.Fatalf("cookie attrs=%+v", c)
	}
}

func TestAuth_LoginMissingFields(t *testing.T) {
	f := newFixture(t)

	for _, body := range []map[string]string{
		{},
		{"username": "admin"},
		{"password": "password"},
	} {
		resp, raw := f.do(t, http.MethodPost, "/api/auth/login", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body=%v status=%d resp=%s", body, resp.StatusCode, raw)
		}
	}
}

func TestAuth_InvalidCredentialsLookAlike(t *testing.T) {
	f := newFixture(t)

	respWrong, rawWrong := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin", "password": "nope",
	}, nil)
	respUnknown, rawUnknown := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "ghost", "password": "nope",
	}, nil)

	if respWrong.StatusCode != http.StatusUnauthorized || respUnknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d,%d", respWrong.StatusCode, respUnknown.StatusCode)
	}

	var a, b map[string]any
	if err := json.Unmarshal(rawWrong, &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(rawUnknown, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(a) != len(b) || a["error"] != "invalid credentials" || a["error"] != b["error"] {
		t.Fatalf("bodies differ:\n%s\n%s", rawWrong, rawUnknown)
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			t.Fatalf("key %q only in wrong-password body", k)
		}
	}
	if len(respWrong.Cookies()) != 0 || len(respUnknown.Cookies()) != 0 {
		t.Fatalf("failed login set a cookie")
	}
}

func TestAuth_LoginRegeneratesSession(t *testing.T) {
	f := newFixture(t)

	first := f.login(t, "admin", "password", nil)
	second := f.login(t, "admin", "password", first)

	if first.Value == second.Value {
		t.Fatalf("session cookie reused across logins")
	}
	if n := f.sessions.Len(); n != 1 {
		t.Fatalf("sessions=%d, previous session should be dropped", n)
	}

	resp, _ := f.do(t, http.MethodGet, "/api/auth/me", nil, first)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old cookie still valid: status=%d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodGet, "/api/auth/me", nil, second)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new cookie rejected: status=%d", resp.StatusCode)
	}
}

func TestAuth_MeAndLogout(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous me status=%d body=%s", resp.StatusCode, raw)
	}

	c := f.login(t, "viewer", "viewer-pass", nil)

	resp, raw = f.do(t, http.MethodGet, "/api/auth/me", nil, c)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status=%d body=%s", resp.StatusCode, raw)
	}
	var me struct {
		User auth.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &me); err != nil || me.User.Username != "viewer" || me.User.IsAdmin {
		t.Fatalf("me body=%s err=%v", raw, err)
	}

	resp, raw = f.do(t, http.MethodPost, "/api/auth/logout", nil, c)
	if resp.StatusCode != http.StatusOK || string(bytes.TrimSpace(raw)) != `{"success":true}` {
		t.Fatalf("logout status=%d body=%s", resp.StatusCode, raw)
	}
	if cleared := sessionCookie(t, resp); cleared.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cleared)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/auth/me", nil, c)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout status=%d", resp.StatusCode)
	}
}

func TestAuth_RequireAdmin(t *testing.T) {
	f := newFixture(t)

	forged := &http.Cookie{Name: auth.CookieName, Value: "forged"}
	viewer := f.login(t, "viewer", "viewer-pass", nil)
	admin := f.login(t, "admin", "password", nil)

	cases := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{"no session", nil, http.StatusUnauthorized},
		{"forged cookie", forged, http.StatusUnauthorized},
		{"non-admin", viewer, http.StatusUnauthorized},
		{"admin", admin, http.StatusNoContent},
	}

	for _, tc := range cases {
		resp, raw := f.do(t, http.MethodPost, "/admin-only", nil, tc.cookie)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status=%d body=%s", tc.name, resp.StatusCode, raw)
		}
	}
}

func TestAuth_Register(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "carol", "password": "longenough",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", resp.StatusCode, raw)
	}

	resp, _ = f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "carol", "password": "longenough",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status=%d", resp.StatusCode)
	}

	resp, _ = f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "dave", "password": "short",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password status=%d", resp.StatusCode)
	}

	// registration limit is 3 per minute per IP
	resp, _ = f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "erin", "password": "longenough",
	}, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("fourth register status=%d", resp.StatusCode)
	}

	f.login(t, "carol", "longenough", nil)
}
