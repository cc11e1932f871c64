// internal/app/system/pinfeed/hub.go

// Package pinfeed keeps a live view of the pin set and pushes it to
// subscribers. The store is the single owner of truth: every event a
// subscriber receives is the full snapshot re-read from the store, never
// an incremental patch, so delivery converges regardless of ordering
// between local writes and remote changes.
package pinfeed

import (
	"context"
	"sync"
	"time"

	"github.com/accessmaps/accessmap/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lister is the slice of the pin store the feed needs.
type Lister interface {
	List(ctx context.Context) ([]models.Pin, error)
}

// Hub fans the current pin snapshot out to subscribers. Snapshots are
// shared read-only slices; consumers must not mutate them in place.
type Hub struct {
	store Lister
	log   *zap.Logger

	// notifyCh coalesces refresh requests: a burst of writes costs one
	// store read, not one per write.
	notifyCh chan struct{}

	mu       sync.Mutex
	subs     map[uuid.UUID]chan []models.Pin
	snapshot []models.Pin
	closed   bool
}

func NewHub(store Lister, logger *zap.Logger) *Hub {
	return &Hub{
		store:    store,
		log:      logger,
		notifyCh: make(chan struct{}, 1),
		subs:     make(map[uuid.UUID]chan []models.Pin),
	}
}

// Subscribe registers a subscriber. The returned channel receives the
// current snapshot immediately and again on every change. The returned
// cancel func is idempotent and safe to call during teardown; after it
// returns the channel is closed and delivery stops.
func (h *Hub) Subscribe() (<-chan []models.Pin, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []models.Pin, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := uuid.New()
	h.subs[id] = ch
	ch <- h.snapshot

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Notify requests a refresh. Non-blocking; called by mutating handlers
// after a successful write and by the change-stream watcher.
func (h *Hub) Notify() {
	select {
	case h.notifyCh <- struct{}{}:
	default:
	}
}

// Refresh re-reads the store and publishes the result. A failed read
// leaves the cached snapshot unchanged, so a transient store error never
// blanks the map for connected clients.
func (h *Hub) Refresh(ctx context.Context) error {
	pins, err := h.store.List(ctx)
	if err != nil {
		h.log.Warn("pin feed refresh failed; keeping previous snapshot", zap.Error(err))
		return err
	}
	h.publish(pins)
	return nil
}

func (h *Hub) publish(pins []models.Pin) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.snapshot = pins
	for _, ch := range h.subs {
		// Latest-wins: drop a stale undelivered snapshot rather than block.
		select {
		case <-ch:
		default:
		}
		ch <- pins
	}
}

// Snapshot returns the most recently published pin set.
func (h *Hub) Snapshot() []models.Pin {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot
}

// Run loads the initial snapshot, then serves refresh requests and a
// periodic full re-read until ctx is done. The ticker is the safety net
// for store variants without change notification.
func (h *Hub) Run(ctx context.Context, refreshEvery time.Duration) {
	if err := h.Refresh(ctx); err != nil {
		h.log.Warn("initial pin snapshot load failed", zap.Error(err))
	}

	if refreshEvery <= 0 {
		refreshEvery = 30 * time.Second
	}
	ticker := time.NewTicker(refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case <-h.notifyCh:
			_ = h.Refresh(ctx)
		case <-ticker.C:
			_ = h.Refresh(ctx)
		}
	}
}

// Close tears down every subscriber. Safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
