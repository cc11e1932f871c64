// internal/app/features/search/handler.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/accessmaps/accessmap/internal/app/system/geocode"
	"github.com/accessmaps/accessmap/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler proxies the search bar's geocoding lookups.
type Handler struct {
	Geo *geocode.Client
	Log *zap.Logger
}

func NewHandler(geo *geocode.Client, logger *zap.Logger) *Handler {
	return &Handler{Geo: geo, Log: logger}
}

// searchResponse echoes the caller's seq tag so the browser can discard
// responses that arrive after a newer query was issued.
type searchResponse struct {
	Seq    string          `json:"seq,omitempty"`
	Places []geocode.Place `json:"places"`
}

// Serve handles GET /api/search?q=...&seq=N.
//
// A blank query returns an empty list without touching the upstream
// API; geocoding outages degrade to an error message, never a 500 page.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	seq := query.Get(r, "seq")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	places, err := h.Geo.Forward(ctx, q, geocode.DefaultLimit)
	if err != nil {
		if errors.Is(err, geocode.ErrNotConfigured) {
			writeSearchError(w, http.StatusServiceUnavailable, "search_disabled", "Location search is not configured.")
			return
		}
		h.Log.Warn("geocoding lookup failed", zap.String("query", q), zap.Error(err))
		writeSearchError(w, http.StatusBadGateway, "search_failed", "Location search is temporarily unavailable.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(searchResponse{Seq: seq, Places: places})
}

func writeSearchError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
