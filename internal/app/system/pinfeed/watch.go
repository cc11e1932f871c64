// internal/app/system/pinfeed/watch.go
package pinfeed

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Watcher turns MongoDB change-stream events on the pins collection into
// hub refreshes, so remote writes (other instances, direct DB edits)
// reach subscribers without waiting for the periodic re-read.
type Watcher struct {
	coll *mongo.Collection
	hub  *Hub
	log  *zap.Logger
}

func NewWatcher(coll *mongo.Collection, hub *Hub, logger *zap.Logger) *Watcher {
	return &Watcher{coll: coll, hub: hub, log: logger}
}

// Run watches the collection until ctx is done, reconnecting with
// backoff after stream errors. Change streams need a replica set; on a
// standalone MongoDB the watch fails and the hub's periodic refresh
// carries the feed alone.
func (w *Watcher) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := w.coll.Watch(ctx, mongo.Pipeline{})
		if err != nil {
			w.log.Warn("pin change stream unavailable; relying on periodic refresh",
				zap.Error(err),
				zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < time.Minute {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		w.log.Info("pin change stream established")

		for stream.Next(ctx) {
			// The event payload doesn't matter; any change invalidates
			// the snapshot and the hub re-reads the full set.
			w.hub.Notify()
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			w.log.Warn("pin change stream interrupted", zap.Error(err))
		}
		_ = stream.Close(context.Background())
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
