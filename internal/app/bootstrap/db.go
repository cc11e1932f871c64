// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/accessmaps/accessmap/internal/app/store/oauthstate"
	"github.com/accessmaps/accessmap/internal/app/store/pinfile"
	"github.com/accessmaps/accessmap/internal/app/store/pins"
	"github.com/accessmaps/accessmap/internal/app/store/users"
	"github.com/accessmaps/accessmap/internal/app/system/pinfeed"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the store
// layer. The pin store backend follows appCfg.StorageType; everything
// else (users, OAuth state) always lives in MongoDB.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Users:         users.New(db),
		States:        oauthstate.New(db),
	}

	switch appCfg.StorageType {
	case "file":
		fileStore, err := pinfile.New(appCfg.PinFilePath, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("open pin file: %w", err)
		}
		deps.Pins = fileStore
		logger.Info("using file-backed pin storage", zap.String("path", appCfg.PinFilePath))
	default:
		mongoPins := pins.New(db, logger)
		deps.Pins = mongoPins
		deps.MongoPins = mongoPins
	}

	deps.Feed = pinfeed.NewHub(deps.Pins, logger)

	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := deps.States.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("oauth state indexes: %w", err)
	}
	if deps.MongoPins != nil {
		if err := deps.MongoPins.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("pin indexes: %w", err)
		}
	}
	return nil
}
