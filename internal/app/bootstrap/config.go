// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for AccessMap.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ACCESSMAP_MONGO_URI, ACCESSMAP_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "accessmap", Desc: "MongoDB database name"},

	{Name: "storage_type", Default: "mongo", Desc: "Pin storage backend: 'mongo' or 'file'"},
	{Name: "pin_file_path", Default: "./data/pins.json", Desc: "Pin JSON file path (file storage only)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "accessmap-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "mapbox_token", Default: "", Desc: "Mapbox token for the server-side geocoding proxy"},
	{Name: "mapbox_public_token", Default: "", Desc: "Mapbox token served to the browser for map tiles"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},

	{Name: "feed_refresh_interval", Default: "30s", Desc: "Periodic pin feed refresh interval (e.g., 30s, 1m)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ACCESSMAP_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ACCESSMAP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		StorageType: appValues.String("storage_type"),
		PinFilePath: appValues.String("pin_file_path"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		MapboxToken:       appValues.String("mapbox_token"),
		MapboxPublicToken: appValues.String("mapbox_public_token"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		FeedRefreshInterval: appValues.Duration("feed_refresh_interval", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// AccessMap validates the MongoDB URI format and the storage selector
// early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "mongo", "file":
	default:
		return fmt.Errorf("storage_type must be 'mongo' or 'file', got %q", appCfg.StorageType)
	}

	if appCfg.StorageType == "file" && appCfg.PinFilePath == "" {
		return fmt.Errorf("pin_file_path is required when storage_type is 'file'")
	}

	if appCfg.MapboxToken == "" {
		logger.Warn("mapbox_token not set; location search will be disabled")
	}

	return nil
}
