// internal/app/features/mappage/handler.go

// Package mappage serves the campus map shell. All pin interaction
// happens client-side against /api/pins; this page only carries the
// Mapbox bootstrap values and the signed-in user context.
package mappage

import (
	"net/http"

	"github.com/accessmaps/accessmap/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Default viewport. Centered on campus; zoom tuned for building-level
// pin placement.
const (
	DefaultCenterLng = -122.01635
	DefaultCenterLat = 37.56464
	DefaultZoom      = 17.2
)

type Handler struct {
	MapboxPublicToken string
	Log               *zap.Logger
}

func NewHandler(mapboxPublicToken string, logger *zap.Logger) *Handler {
	return &Handler{
		MapboxPublicToken: mapboxPublicToken,
		Log:               logger,
	}
}

type mapPageData struct {
	viewdata.BaseVM
	MapboxToken string
	CenterLng   float64
	CenterLat   float64
	Zoom        float64
}

// ServeMap handles GET /.
func (h *Handler) ServeMap(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "map", mapPageData{
		BaseVM:      viewdata.NewBaseVM(r, "Campus Map"),
		MapboxToken: h.MapboxPublicToken,
		CenterLng:   DefaultCenterLng,
		CenterLat:   DefaultCenterLat,
		Zoom:        DefaultZoom,
	})
}
