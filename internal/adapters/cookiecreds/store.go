package cookiecreds

// Package cookiecreds stores the bearer token pair directly in browser
// cookies. Each Store binds to one request/response exchange: reads come
// from the request cookies, writes go to Set-Cookie headers and to an
// in-memory snapshot so later reads in the same exchange observe them.

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

const (
	// AccessCookie and RefreshCookie are the cookie names holding the
	// token pair. They are always written and cleared together.
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	defaultMaxAge = 30 * 24 * time.Hour
)

// Config controls cookie attributes shared by every exchange.
type Config struct {
	// Domain scopes the cookies. Leave empty to use the request domain.
	Domain string
	// MaxAge bounds cookie lifetime. It must not undercut token validity;
	// expiry is enforced by the backend, not the client. Zero means the
	// 30-day default.
	MaxAge time.Duration
}

// Factory builds per-exchange stores with validated, shared settings.
type Factory struct {
	domain string
	maxAge time.Duration
}

// NewFactory validates the configuration once. A cookie domain that is
// itself a public suffix (e.g. "com", "co.uk") is rejected: browsers
// refuse such cookies and the pair would silently never persist.
func NewFactory(cfg Config) (*Factory, error) {
	domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.Domain)), ".")
	if domain != "" {
		suffix, icann := publicsuffix.PublicSuffix(domain)
		if icann && suffix == domain {
			return nil, fmt.Errorf("cookie domain %q is a public suffix", domain)
		}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &Factory{domain: domain, maxAge: maxAge}, nil
}

// ForExchange binds a store to one request/response pair.
func (f *Factory) ForExchange(w http.ResponseWriter, r *http.Request) ports.CredentialStore {
	return &Store{
		w:      w,
		r:      r,
		domain: f.domain,
		maxAge: f.maxAge,
		secure: isSecureRequest(r),
	}
}

// Store is the per-exchange cookie-backed credential store.
type Store struct {
	w      http.ResponseWriter
	r      *http.Request
	domain string
	maxAge time.Duration
	secure bool

	mu      sync.Mutex
	loaded  bool
	creds   domainauth.Credentials
	present bool
}

var _ ports.CredentialStore = (*Store)(nil)

// Get returns the pair from the exchange snapshot, loading it from the
// request cookies on first use. A pair missing either cookie counts as
// absent.
func (s *Store) Get() (domainauth.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	if !s.present {
		return domainauth.Credentials{}, false
	}
	return s.creds, true
}

// Set writes both cookies and updates the snapshot so subsequent Get
// calls in this exchange see the new pair immediately.
func (s *Store) Set(creds domainauth.Credentials) error {
	if !creds.Valid() {
		return apperrors.Validation("credential pair must carry both tokens")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCookie(AccessCookie, creds.AccessToken, int(s.maxAge.Seconds()))
	s.writeCookie(RefreshCookie, creds.RefreshToken, int(s.maxAge.Seconds()))
	s.loaded = true
	s.creds = creds
	s.present = true
	return nil
}

// Clear expires both cookies together and empties the snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireCookie(AccessCookie)
	s.expireCookie(RefreshCookie)
	s.loaded = true
	s.creds = domainauth.Credentials{}
	s.present = false
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	access, err := s.r.Cookie(AccessCookie)
	if err != nil {
		return
	}
	refresh, err := s.r.Cookie(RefreshCookie)
	if err != nil {
		return
	}
	creds := domainauth.Credentials{AccessToken: access.Value, RefreshToken: refresh.Value}
	if !creds.Valid() {
		return
	}
	s.creds = creds
	s.present = true
}

func (s *Store) writeCookie(name, value string, maxAge int) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// expireCookie mirrors the attributes used when setting cookies to
// maximize compatibility across browsers during deletion.
func (s *Store) expireCookie(name string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.domain,
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
