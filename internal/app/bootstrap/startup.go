// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/accessmaps/accessmap/internal/app/resources"
	"github.com/accessmaps/accessmap/internal/app/system/pinfeed"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// feedCancel stops the feed goroutines; set in Startup, used in Shutdown.
var feedCancel context.CancelFunc

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// AccessMap loads the shared templates and starts the pin feed: the hub
// refresh loop always, and the change-stream watcher when pins live in
// MongoDB.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	feedCtx, cancel := context.WithCancel(context.Background())
	feedCancel = cancel

	go deps.Feed.Run(feedCtx, appCfg.FeedRefreshInterval)

	if deps.MongoPins != nil {
		watcher := pinfeed.NewWatcher(deps.MongoPins.Collection(), deps.Feed, logger)
		go watcher.Run(feedCtx)
	}

	return nil
}
