package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreMode selects where browser credentials live between
// requests.
type SessionStoreMode string

const (
	// SessionStoreCookie keeps the token pair in HTTP-only cookies.
	SessionStoreCookie SessionStoreMode = "cookie"
	// SessionStoreRedis keeps tokens server-side in Redis, keyed by an
	// opaque session-id cookie.
	SessionStoreRedis SessionStoreMode = "redis"
	// SessionStoreMemory keeps tokens in process memory. Dev-only: every
	// browser shares one session and a restart forgets it.
	SessionStoreMemory SessionStoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreMode.
func (s *SessionStoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cookie", "redis", "memory":
		*s = SessionStoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreMode: %q (valid options: cookie, redis, memory)", v)
	}
}

// SessionConfig groups session and credential storage configuration.
type SessionConfig struct {
	// Store determines which credential store backs browser sessions.
	Store SessionStoreMode `env:"SESSION_STORE" envDefault:"cookie"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`

	// TTL is how long a stored session lives without being refreshed.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.Store == "" {
		s.Store = SessionStoreCookie
	}
	if s.TTL <= 0 {
		s.TTL = 720 * time.Hour
	}
}
