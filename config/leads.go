package config

import "time"

// LeadsConfig contains the lead-capture webhook configuration. When
// WebhookURL is empty, captured leads are only forwarded to the backend.
type LeadsConfig struct {
	// WebhookURL is the notification target for captured leads.
	WebhookURL string `env:"LEADS_WEBHOOK_URL" envDefault:""`

	// WebhookFields maps outgoing payload fields to JMESPath
	// expressions evaluated against the lead, e.g.
	// "text:message,who:contact". Empty forwards the lead verbatim.
	WebhookFields map[string]string `env:"LEADS_WEBHOOK_FIELDS" envSeparator:"," envKeyValSeparator:":"`

	// WebhookTimeout bounds one delivery attempt.
	WebhookTimeout time.Duration `env:"LEADS_WEBHOOK_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to lead webhook configuration values.
func (l *LeadsConfig) Sanitize() {
	if l.WebhookTimeout <= 0 {
		l.WebhookTimeout = 5 * time.Second
	}
}
