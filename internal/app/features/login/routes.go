// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

func Routes(r chi.Router, h *Handler) {
	r.Get("/login", h.ServeLogin)
	r.Post("/login", h.HandleLoginPost)
	r.Get("/register", h.ServeRegister)
	r.Post("/register", h.HandleRegisterPost)
}
