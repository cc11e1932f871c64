// internal/app/features/pins/handler.go
package pins

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"github.com/accessmaps/accessmap/internal/app/system/htmlsanitize"
	"github.com/accessmaps/accessmap/internal/app/system/pinfeed"
	"github.com/accessmaps/accessmap/internal/app/system/timeouts"
	"github.com/accessmaps/accessmap/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the pin persistence contract the handlers need. Both the
// MongoDB store and the file-backed fallback satisfy it.
type Store interface {
	List(ctx context.Context) ([]models.Pin, error)
	GetByID(ctx context.Context, id string) (models.Pin, error)
	Create(ctx context.Context, p models.Pin) (models.Pin, error)
	Update(ctx context.Context, id, ownerID, description, classification string) error
	Delete(ctx context.Context, id, ownerID string) error
	Upvote(ctx context.Context, id, voterID string) (models.Pin, error)
}

// Resetter is implemented by stores that can clear every pin at once.
// The file-backed store supports it; a store without it gets a 501
// from the reset endpoint.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler serves the pin JSON API.
type Handler struct {
	Pins Store
	Feed *pinfeed.Hub
	Log  *zap.Logger
}

func NewHandler(pins Store, feed *pinfeed.Hub, logger *zap.Logger) *Handler {
	return &Handler{Pins: pins, Feed: feed, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Wire types                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// pinRequest is the body for create and edit. Owner and timestamps are
// stamped server-side and never read from the request.
type pinRequest struct {
	Location       *models.Location `json:"location,omitempty"`
	Description    string           `json:"description"`
	Classification string           `json:"classification"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondStoreErr maps store sentinel errors to HTTP responses. Anything
// unrecognized is a 502: the write failed, the cached snapshot is left
// untouched, and the user gets a dismissable message.
func (h *Handler) respondStoreErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "That pin no longer exists.")
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "Only the pin's owner can do that.")
	case errors.Is(err, models.ErrSelfVoteForbidden):
		writeError(w, http.StatusForbidden, "self_vote", "You can't upvote your own pin.")
	case errors.Is(err, models.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", "You already upvoted this pin.")
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
	default:
		h.Log.Error("pin store operation failed",
			zap.String("op", op),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "store_unavailable", "Couldn't reach the pin store. Please try again.")
	}
}

// validationMessage trims the sentinel prefix from a wrapped validation
// error, leaving the human-readable part.
func validationMessage(err error) string {
	msg := err.Error()
	if cut, ok := strings.CutPrefix(msg, models.ErrValidation.Error()+": "); ok {
		return cut
	}
	return msg
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/pins – current snapshot                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pins, err := h.Pins.List(ctx)
	if err != nil {
		h.respondStoreErr(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, pins)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/pins – create                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Sign in to report a pin.")
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body.")
		return
	}
	if req.Location == nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "location is required")
		return
	}

	pin := models.Pin{
		Location:       *req.Location,
		Description:    strings.TrimSpace(htmlsanitize.Strip(req.Description)),
		Classification: req.Classification,
		OwnerID:        user.ID,
		OwnerName:      user.Name,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Pins.Create(ctx, pin)
	if err != nil {
		h.respondStoreErr(w, r, "create", err)
		return
	}

	h.Feed.Notify()
	h.Log.Info("pin created",
		zap.String("pin_id", created.ID.Hex()),
		zap.String("owner_id", created.OwnerID),
		zap.String("classification", created.Classification))
	writeJSON(w, http.StatusCreated, created)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/pins/{id} – owner edit                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Sign in first.")
		return
	}
	id := chi.URLParam(r, "id")

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	desc := strings.TrimSpace(htmlsanitize.Strip(req.Description))
	if err := h.Pins.Update(ctx, id, user.ID, desc, req.Classification); err != nil {
		h.respondStoreErr(w, r, "update", err)
		return
	}

	h.Feed.Notify()
	updated, err := h.Pins.GetByID(ctx, id)
	if err != nil {
		// Updated but vanished before re-read; the feed will reconcile.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/pins/{id} – owner delete                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Sign in first.")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Pins.Delete(ctx, id, user.ID); err != nil {
		h.respondStoreErr(w, r, "delete", err)
		return
	}

	h.Feed.Notify()
	h.Log.Info("pin deleted",
		zap.String("pin_id", id),
		zap.String("owner_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/pins/reset – clear the board                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Sign in first.")
		return
	}

	resetter, ok := h.Pins.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "reset_unsupported", "This pin store can't be reset.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := resetter.Reset(ctx); err != nil {
		h.respondStoreErr(w, r, "reset", err)
		return
	}

	h.Feed.Notify()
	h.Log.Info("pins reset", zap.String("user_id", user.ID))
	w.WriteHeader(http.StatusNoContent)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/pins/{id}/upvote                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Upvote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "Sign in to upvote.")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	pin, err := h.Pins.Upvote(ctx, id, user.ID)
	if err != nil {
		h.respondStoreErr(w, r, "upvote", err)
		return
	}

	h.Feed.Notify()
	writeJSON(w, http.StatusOK, pin)
}
