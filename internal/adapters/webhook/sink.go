package webhook

// Package webhook delivers captured chat leads to an external HTTP
// target (team chat, CRM intake, etc). The payload shape is driven by
// JMESPath expressions over the lead so operators can match whatever
// schema the receiving hook expects without a code change.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/lumenshop/storefront/internal/domain/model"
	"github.com/lumenshop/storefront/internal/ports"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.New("expression cannot be empty")
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// Config describes the webhook target.
type Config struct {
	// URL is the webhook endpoint. http or https with a host.
	URL string
	// Fields maps output field names to JMESPath expressions evaluated
	// against the lead JSON. Empty means the lead is forwarded as-is.
	Fields map[string]string
	// Timeout bounds one delivery. Zero means 10s.
	Timeout time.Duration
}

// Options groups optional dependencies for the sink.
type Options struct {
	HTTPClient *http.Client
	Evaluator  JMESPathEvaluator
	Logger     *slog.Logger
}

// Sink posts leads to the configured webhook.
type Sink struct {
	url    string
	fields map[string]string
	http   *http.Client
	jems   JMESPathEvaluator
	logger *slog.Logger
}

var _ ports.LeadSink = (*Sink)(nil)

// New validates the target URL and every field expression up front so a
// misconfigured sink fails at startup, not on the first lead.
func New(cfg Config, opts Options) (*Sink, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid webhook URL scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("invalid webhook URL: missing host")
	}

	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	for field, expr := range cfg.Fields {
		if err := jems.Validate(expr); err != nil {
			return nil, fmt.Errorf("invalid JMESPath for field %q: %w", field, err)
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{
		url:    cfg.URL,
		fields: cfg.Fields,
		http:   hc,
		jems:   jems,
		logger: logger,
	}, nil
}

// Deliver posts the lead. A non-2xx response is an error so the caller
// can decide whether delivery failures matter (lead capture treats them
// as best-effort).
func (s *Sink) Deliver(ctx context.Context, lead model.Lead) error {
	body, err := s.buildBody(lead)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("deliver lead webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("lead webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// buildBody shapes the outgoing payload. With no field mapping the lead
// is forwarded verbatim; otherwise each configured field is extracted
// from the lead JSON with its JMESPath expression.
func (s *Sink) buildBody(lead model.Lead) ([]byte, error) {
	raw, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("marshal lead: %w", err)
	}
	if len(s.fields) == 0 {
		return raw, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("reshape lead: %w", err)
	}

	out := make(map[string]any, len(s.fields))
	for field, expr := range s.fields {
		val, evalErr := s.jems.Evaluate(expr, data)
		if evalErr != nil {
			return nil, fmt.Errorf("evaluate field %q: %w", field, evalErr)
		}
		out[field] = val
	}

	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook body: %w", err)
	}
	return body, nil
}
