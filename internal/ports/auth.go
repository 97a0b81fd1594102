package ports

// Package ports defines interfaces (hexagonal ports) for the gateway's
// behavior. Implementations live in internal/adapters and
// internal/backend; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
)

// CredentialStore is the durable holder of the bearer token pair for one
// browser context. Get, Set, and Clear are synchronous: a Set or Clear is
// immediately visible to subsequent Get calls through the same store.
//
// The pair invariant holds at this boundary: implementations must never
// expose a half-written pair, and storage failures degrade to "no
// credential" rather than surfacing as request errors.
type CredentialStore interface {
	// Get returns the stored pair and whether a usable pair is present.
	Get() (domainauth.Credentials, bool)

	// Set replaces the stored pair. Rejects pairs missing either token.
	Set(creds domainauth.Credentials) error

	// Clear removes both tokens together.
	Clear()
}

// RegisterInput groups the fields accepted by the backend's register
// endpoint.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthAPI is the consumed contract of the backend's /auth/* endpoints.
// Login and Register return the credential pair alongside the identity;
// the session controller persists the pair before committing state.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error)
	Register(ctx context.Context, in RegisterInput) (domainauth.User, domainauth.Credentials, error)

	// Me fetches the identity for the current credential. Returns an
	// unauthorized or session-expired error when the credential is
	// absent or rejected.
	Me(ctx context.Context) (domainauth.User, error)

	// Logout notifies the backend. Best-effort: callers end the local
	// session regardless of the outcome.
	Logout(ctx context.Context) error
}
