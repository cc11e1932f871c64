// internal/app/features/pins/routes.go
package pins

import (
	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the pin API subrouter. Reads are public (the map is
// viewable signed-out); every mutation requires a session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/feed", h.ServeFeed)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/", h.Create)
		r.Post("/reset", h.Reset)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/upvote", h.Upvote)
	})

	return r
}
