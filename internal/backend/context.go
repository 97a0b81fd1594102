package backend

import (
	"context"

	"github.com/lumenshop/storefront/internal/ports"
)

// credentialsKey is an unexported context key type to avoid collisions
// across packages.
type credentialsKey struct{}

// WithCredentials returns a child context that carries the credential
// store for the current exchange. The pipeline reads the store before
// every send and writes it only inside the refresh protocol.
func WithCredentials(ctx context.Context, store ports.CredentialStore) context.Context {
	if store == nil {
		return ctx
	}
	return context.WithValue(ctx, credentialsKey{}, store)
}

// CredentialsFrom returns the credential store carried by the context
// and a boolean indicating presence.
func CredentialsFrom(ctx context.Context) (ports.CredentialStore, bool) {
	if store, ok := ctx.Value(credentialsKey{}).(ports.CredentialStore); ok && store != nil {
		return store, true
	}
	return nil, false
}
