// internal/app/features/pins/feed.go
package pins

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	"go.uber.org/zap"
)

// heartbeatEvery keeps intermediaries from reaping idle SSE connections.
const heartbeatEvery = 25 * time.Second

// ServeFeed handles GET /api/pins/feed: a Server-Sent Events stream
// carrying the full pin snapshot, first message immediately, then again
// on every change. Closing the request tears down the subscription.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming is not supported by this connection.")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots, cancel := h.Feed.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case pins, open := <-snapshots:
			if !open {
				return
			}
			if pins == nil {
				pins = []models.Pin{}
			}
			data, err := json.Marshal(pins)
			if err != nil {
				h.Log.Error("pin snapshot marshal failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: pins\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
