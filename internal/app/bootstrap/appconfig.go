// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request limits. AppConfig is where
// everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Pin storage backend: "mongo" (default) or "file".
	// Users, sessions, and OAuth state always live in MongoDB; this
	// switch only moves the pin layer to a portable JSON file.
	StorageType string
	PinFilePath string // JSON file path when StorageType is "file"

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: accessmap-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Mapbox configuration
	MapboxToken       string // Server-side token for the geocoding proxy
	MapboxPublicToken string // Browser token baked into the map page

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://accessmap.example.edu")
	BaseURL string

	// Periodic full refresh of the pin feed. Safety net for missed
	// change-stream events and the only driver in file-storage mode.
	FeedRefreshInterval time.Duration
}
