// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

func Routes(r chi.Router, h *Handler) {
	r.Post("/logout", h.ServeLogout)
	// GET kept for plain links in page chrome.
	r.Get("/logout", h.ServeLogout)
}
