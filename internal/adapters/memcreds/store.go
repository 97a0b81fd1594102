package memcreds

// Package memcreds provides an in-memory CredentialStore. It backs unit
// tests and the dev-only "memory" session mode, where no cookie exchange
// exists and the whole process shares one session.

import (
	"net/http"
	"sync"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

// Factory hands every exchange the same process-wide store.
type Factory struct {
	store *Store
}

// NewFactory creates a factory around one shared store.
func NewFactory() *Factory {
	return &Factory{store: New()}
}

// ForExchange returns the shared store regardless of the exchange.
//
//nolint:ireturn // matches the CredentialStoreFactory contract.
func (f *Factory) ForExchange(w http.ResponseWriter, r *http.Request) ports.CredentialStore {
	return f.store
}

// Store is a mutex-guarded credential holder.
type Store struct {
	mu      sync.Mutex
	creds   domainauth.Credentials
	present bool
}

var _ ports.CredentialStore = (*Store)(nil)

// New returns an empty store.
func New() *Store { return &Store{} }

// Get returns the stored pair and whether one is present.
func (s *Store) Get() (domainauth.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return domainauth.Credentials{}, false
	}
	return s.creds, true
}

// Set replaces the stored pair.
func (s *Store) Set(creds domainauth.Credentials) error {
	if !creds.Valid() {
		return apperrors.Validation("credential pair must carry both tokens")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.present = true
	return nil
}

// Clear removes both tokens together.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domainauth.Credentials{}
	s.present = false
}
