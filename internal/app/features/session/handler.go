// internal/app/features/session/handler.go

// Package session reports the viewer's session state to the page. The
// browser treats "no response yet" as the un-initialized phase and only
// this endpoint's answer as "determined"; gated UI waits for it.
package session

import (
	"encoding/json"
	"net/http"

	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type sessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Initialized bool         `json:"initialized"`
	User        *sessionUser `json:"user"`
}

// Serve handles GET /api/session.
// Always `initialized: true`: by the time the server can read the
// cookie, session state is determined. A null user means signed out,
// not "still deciding".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{Initialized: true}
	if u, ok := auth.CurrentUser(r); ok {
		resp.User = &sessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}
