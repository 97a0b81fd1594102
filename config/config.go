package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - backend.go: Commerce backend configuration
//   - session.go: Session and credential storage configuration
//   - database.go: Redis configuration
//   - cache.go: Content cache configuration
//   - leads.go: Lead webhook configuration
//   - http.go: HTTP server configuration
type AppConfig struct {
	// IsDev controls development mode behavior (relaxed cookies, etc.)
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Backend is the upstream commerce API the gateway fronts.
	Backend BackendConfig

	// Session controls credential storage for browser sessions.
	Session SessionConfig

	// Redis configuration (session records and content cache).
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Cache is the content cache configuration.
	Cache CacheConfig

	// Leads is the lead-capture webhook configuration.
	Leads LeadsConfig

	// HTTP server configuration
	HTTP HTTPConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.Cache.Sanitize()
	c.Leads.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// NeedsRedis reports whether any enabled subsystem requires a Redis
// connection at startup.
func (c *AppConfig) NeedsRedis() bool {
	return c.Session.Store == SessionStoreRedis || c.Cache.Enabled
}
