package backend

// Package backend is the single request pipeline between the gateway and
// the commerce backend. Every outbound call goes through Client.Do so
// that the bearer credential is attached uniformly and an expired access
// token is recovered transparently, exactly once, via the refresh
// protocol.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Options groups dependencies for Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "https://api.shop.internal".
	BaseURL string
	// HTTPClient overrides the transport. The zero value gets a client
	// with a sane timeout; a timed-out request surfaces as unavailable,
	// never as unauthorized.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// OnSessionExpired fires at most once per failed refresh cycle, after
	// the credential store has been cleared. Optional.
	OnSessionExpired func(ctx context.Context)
}

// Client is the request pipeline. It is safe for concurrent use; the
// refresh group collapses concurrent refresh attempts for the same
// refresh token into a single network call.
type Client struct {
	base             *url.URL
	http             *http.Client
	logger           *slog.Logger
	onSessionExpired func(ctx context.Context)
	refresh          singleflight.Group
}

// NewClient constructs the pipeline for the given backend origin.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL scheme must be http or https, got %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:             base,
		http:             hc,
		logger:           logger,
		onSessionExpired: opts.OnSessionExpired,
	}, nil
}

// Request describes one backend call. Out, when non-nil, receives the
// decoded 2xx response body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Out    any
}

// Do sends the request through the pipeline: attach the access token if
// one is stored, send, and on an unauthorized response run the refresh
// protocol and resubmit the original request exactly once. All other
// failures pass through untransformed.
func (c *Client) Do(ctx context.Context, req Request) error {
	return c.do(ctx, req, false)
}

func (c *Client) do(ctx context.Context, req Request, retried bool) error {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}

	store, hasStore := CredentialsFrom(ctx)
	if hasStore {
		if creds, ok := store.Get(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// No response received: transport-level failure. Never triggers
		// refresh or logout; the caller may retry later.
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "backend unreachable")
	}
	defer closeBody(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		if !hasStore {
			return apperrors.Unauthorized("authentication required")
		}
		if retried {
			// The refreshed token was rejected too. Escalate instead of
			// looping; the session is unrecoverable.
			store.Clear()
			return apperrors.SessionExpired("session expired")
		}
		if _, ok := store.Get(); !ok {
			// Never held a usable pair; nothing to refresh.
			return apperrors.Unauthorized("authentication required")
		}
		if refreshErr := c.refreshCredentials(ctx, store); refreshErr != nil {
			return refreshErr
		}
		return c.do(ctx, req, true)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errorFromResponse(resp)
	}

	if req.Out != nil {
		if decodeErr := json.NewDecoder(resp.Body).Decode(req.Out); decodeErr != nil {
			return apperrors.Wrap(decodeErr, apperrors.ErrCodeInternal, "decode backend response")
		}
	} else {
		drain(resp.Body)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.resolve(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build backend request")
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func (c *Client) resolve(path string) *url.URL {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	base := *c.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref)
}

// refreshCredentials runs the refresh protocol against the store carried
// by the context. Concurrent callers holding the same refresh token join
// a single in-flight exchange; the group entry is dropped once it
// settles so the next expiry cycle starts fresh.
func (c *Client) refreshCredentials(ctx context.Context, store ports.CredentialStore) error {
	creds, ok := store.Get()
	if !ok {
		store.Clear()
		return apperrors.SessionExpired("no refresh credential")
	}

	v, err, shared := c.refresh.Do(creds.RefreshToken, func() (any, error) {
		// The exchange outlives any single caller: a canceled request
		// must not fail the refresh its concurrent peers are awaiting.
		next, exchangeErr := c.exchangeRefreshToken(context.WithoutCancel(ctx), creds.RefreshToken)
		if exchangeErr != nil {
			c.notifySessionExpired(ctx)
			return domainauth.Credentials{}, exchangeErr
		}
		return next, nil
	})
	if err != nil {
		store.Clear()
		if apperrors.IsSessionExpired(err) {
			return err
		}
		return apperrors.Wrap(err, apperrors.ErrCodeSessionExpired, "session expired")
	}

	next, ok := v.(domainauth.Credentials)
	if !ok || !next.Valid() {
		store.Clear()
		return apperrors.SessionExpired("refresh returned unusable credentials")
	}

	// Every joined caller writes the pair into its own store so each
	// browser exchange observes the rotation.
	if setErr := store.Set(next); setErr != nil {
		c.logger.WarnContext(ctx, "persist refreshed credentials failed", "error", setErr, "shared", shared)
	}
	return nil
}

// exchangeRefreshToken performs the actual POST /auth/refresh. It goes
// around Do on purpose: the refresh call itself must never recurse into
// the refresh protocol.
func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
	payload, err := json.Marshal(refreshPayload{RefreshToken: refreshToken})
	if err != nil {
		return domainauth.Credentials{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode refresh request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/auth/refresh").String(), bytes.NewReader(payload))
	if err != nil {
		return domainauth.Credentials{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build refresh request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domainauth.Credentials{}, apperrors.Wrap(err, apperrors.ErrCodeSessionExpired, "refresh endpoint unreachable")
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return domainauth.Credentials{}, apperrors.SessionExpired(
			fmt.Sprintf("refresh rejected with status %d", resp.StatusCode))
	}

	var out refreshPayload
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return domainauth.Credentials{}, apperrors.Wrap(decodeErr, apperrors.ErrCodeSessionExpired, "decode refresh response")
	}
	next := domainauth.Credentials{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
	if !next.Valid() {
		return domainauth.Credentials{}, apperrors.SessionExpired("refresh response missing tokens")
	}
	return next, nil
}

func (c *Client) notifySessionExpired(ctx context.Context) {
	if c.onSessionExpired == nil {
		return
	}
	c.onSessionExpired(ctx)
}

// refreshPayload is the wire shape of both the refresh request and its
// response.
type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken,omitempty"`
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorFromResponse maps a non-2xx, non-401 response onto the error
// taxonomy. These pass through to the caller untransformed by the
// pipeline.
func errorFromResponse(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = fmt.Sprintf("backend responded with status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(msg)
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return apperrors.Validation(msg)
	default:
		return apperrors.Internal(msg)
	}
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
}

func closeBody(body io.ReadCloser) {
	_ = body.Close()
}
