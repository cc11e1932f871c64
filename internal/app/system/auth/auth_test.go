package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return m
}

func TestNewSessionManager_RequiresKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "name", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	m := newManager(t)

	// Sign in and capture the cookie.
	req1 := httptest.NewRequest("POST", "/login", nil)
	rec1 := httptest.NewRecorder()
	err := m.SignIn(rec1, req1, &auth.SessionUser{ID: "u1", Name: "Pat", Email: "pat@example.edu"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	// Replay the cookie through the middleware.
	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}

	var got *auth.SessionUser
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after round trip")
	}
	if got.ID != "u1" || got.Name != "Pat" || got.Email != "pat@example.edu" {
		t.Errorf("user: got %+v", got)
	}
}

func TestLoadSessionUser_TamperedCookie(t *testing.T) {
	m := newManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})

	called := false
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("tampered cookie must not produce a user")
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("request must continue unauthenticated, not fail")
	}
}

func TestRequireSignedIn_API(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/pins", nil)
	rec := httptest.NewRecorder()

	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run unauthenticated")
	}))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not_authenticated") {
		t.Errorf("body: got %q, want not_authenticated code", rec.Body.String())
	}
}

func TestRequireSignedIn_HTMLRedirects(t *testing.T) {
	req := httptest.NewRequest("GET", "/somewhere?x=1", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run unauthenticated")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?return=") {
		t.Errorf("Location: got %q, want /login?return=...", loc)
	}
}

func TestRequireSignedIn_PassesThrough(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/pins", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u1", Name: "Pat"})
	rec := httptest.NewRecorder()

	called := false
	auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if !called {
		t.Error("signed-in request must reach the handler")
	}
}

func TestSignOut_DeletesCookie(t *testing.T) {
	m := newManager(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	if err := m.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge != -1 {
			t.Errorf("cookie MaxAge: got %d, want -1", c.MaxAge)
		}
	}
}
