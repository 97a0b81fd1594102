package config

import "time"

// BackendConfig contains the upstream commerce API configuration. All
// durable data lives behind this API; the gateway only relays it.
type BackendConfig struct {
	// BaseURL is the root of the commerce REST API.
	BaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:9000"`

	// Timeout bounds a single backend round trip, including the
	// transparent retry after a token refresh.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}
