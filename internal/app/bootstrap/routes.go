// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/accessmaps/accessmap/internal/app/features/authgoogle"
	errorsfeature "github.com/accessmaps/accessmap/internal/app/features/errors"
	healthfeature "github.com/accessmaps/accessmap/internal/app/features/health"
	loginfeature "github.com/accessmaps/accessmap/internal/app/features/login"
	logoutfeature "github.com/accessmaps/accessmap/internal/app/features/logout"
	mappagefeature "github.com/accessmaps/accessmap/internal/app/features/mappage"
	pinsfeature "github.com/accessmaps/accessmap/internal/app/features/pins"
	searchfeature "github.com/accessmaps/accessmap/internal/app/features/search"
	sessionfeature "github.com/accessmaps/accessmap/internal/app/features/session"
	"github.com/accessmaps/accessmap/internal/app/system/auth"
	"github.com/accessmaps/accessmap/internal/app/system/geocode"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. It mounts the map page, the JSON pin API,
// the live feed, auth, search, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	geoClient := geocode.New(appCfg.MapboxToken, logger)
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// The map shell
	mapHandler := mappagefeature.NewHandler(appCfg.MapboxPublicToken, logger)
	r.Mount("/", mappagefeature.Routes(mapHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.Users, sessionMgr, googleEnabled, logger)
	loginfeature.Routes(r, loginHandler)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutfeature.Routes(r, logoutHandler)

	googleHandler := authgooglefeature.NewHandler(
		deps.Users, sessionMgr, deps.States,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// JSON API
	pinsHandler := pinsfeature.NewHandler(deps.Pins, deps.Feed, logger)
	r.Mount("/api/pins", pinsfeature.Routes(pinsHandler))

	searchHandler := searchfeature.NewHandler(geoClient, logger)
	r.Mount("/api/search", searchfeature.Routes(searchHandler))

	sessionHandler := sessionfeature.NewHandler(logger)
	r.Mount("/api/session", sessionfeature.Routes(sessionHandler))

	return r, nil
}
