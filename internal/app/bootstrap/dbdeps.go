// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	pinsfeature "github.com/accessmaps/accessmap/internal/app/features/pins"
	"github.com/accessmaps/accessmap/internal/app/store/oauthstate"
	"github.com/accessmaps/accessmap/internal/app/store/pins"
	"github.com/accessmaps/accessmap/internal/app/store/users"
	"github.com/accessmaps/accessmap/internal/app/system/pinfeed"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Pins is the selected pin backend (Mongo or file). MongoPins is only
// set in Mongo mode; the change-stream watcher needs the raw collection.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Pins      pinsfeature.Store
	MongoPins *pins.Store
	Users     *users.Store
	States    *oauthstate.Store

	Feed *pinfeed.Hub
}
