package rediscreds

// Package rediscreds keeps the token pair server-side in Redis and gives
// the browser only an opaque session ID cookie. It is the hardened
// alternative to cookiecreds for deployments that must not ship bearer
// tokens to the client at all.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

const (
	// SessionCookie carries the opaque Redis key suffix.
	SessionCookie = "session_id"

	defaultTTL = 30 * 24 * time.Hour
)

// Config controls the Redis-backed store.
type Config struct {
	// Prefix namespaces the Redis keys. Defaults to "creds:".
	Prefix string
	// TTL bounds how long an untouched pair survives. Every Set renews
	// it. Zero means the 30-day default.
	TTL time.Duration
	// Domain scopes the session cookie. Leave empty for the request domain.
	Domain string
}

// Factory builds per-exchange stores over a shared Redis client.
type Factory struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	domain string
}

// NewFactory creates a Redis credential store factory.
func NewFactory(client redis.UniversalClient, cfg Config) (*Factory, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "creds:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Factory{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		domain: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.Domain)), "."),
	}, nil
}

// ForExchange binds a store to one request/response pair.
func (f *Factory) ForExchange(w http.ResponseWriter, r *http.Request) ports.CredentialStore {
	return &Store{factory: f, w: w, r: r, secure: isSecureRequest(r)}
}

// Store resolves the session cookie to a Redis record. Redis failures
// degrade to "no credential"; the rest of the system treats that the
// same as logged out.
type Store struct {
	factory *Factory
	w       http.ResponseWriter
	r       *http.Request
	secure  bool

	mu      sync.Mutex
	loaded  bool
	sid     string
	creds   domainauth.Credentials
	present bool
}

var _ ports.CredentialStore = (*Store)(nil)

// credentialsRecord is the stored JSON shape.
type credentialsRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Get returns the pair for the exchange's session ID, if any.
func (s *Store) Get() (domainauth.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	if !s.present {
		return domainauth.Credentials{}, false
	}
	return s.creds, true
}

// Set stores the pair under the session ID, minting an ID and cookie on
// first use, and renews the TTL.
func (s *Store) Set(creds domainauth.Credentials) error {
	if !creds.Valid() {
		return apperrors.Validation("credential pair must carry both tokens")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.sid == "" {
		s.sid = uuid.NewString()
		s.writeSessionCookie(s.sid)
	}

	data, err := json.Marshal(credentialsRecord{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	key := s.factory.prefix + s.sid
	if err := s.factory.client.Set(s.ctx(), key, data, s.factory.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	s.creds = creds
	s.present = true
	return nil
}

// Clear deletes the Redis record and expires the session cookie. Both
// tokens disappear together by construction.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if s.sid != "" {
		// Best-effort: an unreachable Redis leaves only an orphaned
		// record that the TTL reaps.
		_ = s.factory.client.Del(s.ctx(), s.factory.prefix+s.sid).Err()
	}
	s.expireSessionCookie()
	s.creds = domainauth.Credentials{}
	s.present = false
	s.sid = ""
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	cookie, err := s.r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return
	}
	s.sid = cookie.Value

	data, err := s.factory.client.Get(s.ctx(), s.factory.prefix+s.sid).Result()
	if err != nil {
		// redis.Nil and transport errors alike degrade to logged out.
		return
	}

	var rec credentialsRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return
	}
	creds := domainauth.Credentials{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
	if !creds.Valid() {
		return
	}
	s.creds = creds
	s.present = true
}

func (s *Store) ctx() context.Context {
	return s.r.Context()
}

func (s *Store) writeSessionCookie(sid string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		Domain:   s.factory.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.factory.ttl.Seconds()),
	})
}

func (s *Store) expireSessionCookie() {
	http.SetCookie(s.w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   s.factory.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
