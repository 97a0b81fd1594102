package config

import "time"

// CacheConfig contains the content cache configuration (Redis-based).
// The cache holds backend catalog and blog responses; it is never the
// source of truth.
type CacheConfig struct {
	// Enabled turns the content cache on. When false, every catalog
	// read goes straight to the backend.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// ContentTTL is the TTL for cached catalog and blog content.
	ContentTTL time.Duration `env:"CACHE_CONTENT_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.ContentTTL <= 0 {
		c.ContentTTL = 5 * time.Minute
	}
}
