// internal/app/features/mappage/routes.go
package mappage

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMap)
	return r
}
