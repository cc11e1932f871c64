// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/accessmaps/accessmap/internal/app/store/users"
	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"github.com/accessmaps/accessmap/internal/app/system/timeouts"
	"github.com/accessmaps/accessmap/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

type Handler struct {
	Users         *users.Store
	SessionMgr    *auth.SessionManager
	GoogleEnabled bool
	Log           *zap.Logger
}

func NewHandler(userStore *users.Store, sessionMgr *auth.SessionManager, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         userStore,
		SessionMgr:    sessionMgr,
		GoogleEnabled: googleEnabled,
		Log:           logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type registerFormData struct {
	viewdata.BaseVM
	Error     string
	Name      string
	Email     string
	ReturnURL string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "Invalid form data.", "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderLoginError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, users.ErrBadCredentials):
		h.renderLoginError(w, r, "That email and password combination didn't work.", email)
		return
	case err != nil:
		h.Log.Error("login: authenticate", zap.Error(err))
		h.renderLoginError(w, r, "A server error occurred. Please try again.", email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("login: save session", zap.Error(err), zap.String("email", u.Email))
		h.renderLoginError(w, r, "Unable to create session. Please try again.", email)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("auth_method", u.AuthMethod))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/"), http.StatusSeeOther)
}

// ServeRegister handles GET /register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "register", registerFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Create account"),
		ReturnURL: query.Get(r, "return"),
	})
}

// HandleRegisterPost handles POST /register.
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, r, "Invalid form data.", "", "")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	switch {
	case name == "":
		h.renderRegisterError(w, r, "Please enter your name.", name, email)
		return
	case email == "" || !strings.Contains(email, "@"):
		h.renderRegisterError(w, r, "Please enter a valid email address.", name, email)
		return
	case len(password) < 8:
		h.renderRegisterError(w, r, "Password must be at least 8 characters.", name, email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Register(ctx, name, email, password)
	switch {
	case errors.Is(err, users.ErrDuplicateEmail):
		h.renderRegisterError(w, r, "An account already exists for that email. Try signing in instead.", name, email)
		return
	case err != nil:
		h.Log.Error("register: create user", zap.Error(err))
		h.renderRegisterError(w, r, "A server error occurred. Please try again.", name, email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("register: save session", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/"), http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, msg, email string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in"),
		Error:         msg,
		Email:         email,
		ReturnURL:     strings.TrimSpace(r.FormValue("return")),
		GoogleEnabled: h.GoogleEnabled,
	})
}

func (h *Handler) renderRegisterError(w http.ResponseWriter, r *http.Request, msg, name, email string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "register", registerFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Create account"),
		Error:     msg,
		Name:      name,
		Email:     email,
		ReturnURL: strings.TrimSpace(r.FormValue("return")),
	})
}
