package httpx

import (
	"context"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	"github.com/lumenshop/storefront/internal/service"
)

// sessionControllerKey is an unexported context key type to avoid
// collisions across packages. Centralized here so all handlers and
// middleware use the same keys.
type sessionControllerKey struct{}

type authStateKey struct{}

type requestIDKey struct{}

// SetSessionController returns a child context carrying the exchange's
// session controller.
func SetSessionController(ctx context.Context, ctl *service.SessionController) context.Context {
	if ctl == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionControllerKey{}, ctl)
}

// SessionControllerFrom returns the session controller and a boolean
// indicating presence.
func SessionControllerFrom(ctx context.Context) (*service.SessionController, bool) {
	if ctl, ok := ctx.Value(sessionControllerKey{}).(*service.SessionController); ok && ctl != nil {
		return ctl, true
	}
	return nil, false
}

// SetAuthState returns a child context carrying a resolved session state
// snapshot, written by the route guards after authorization.
func SetAuthState(ctx context.Context, state domainauth.State) context.Context {
	return context.WithValue(ctx, authStateKey{}, state)
}

// AuthStateFrom returns the resolved session state, or the Unknown state
// when no guard has run.
func AuthStateFrom(ctx context.Context) domainauth.State {
	if state, ok := ctx.Value(authStateKey{}).(domainauth.State); ok {
		return state
	}
	return domainauth.Unknown()
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domainauth.User, bool) {
	state := AuthStateFrom(ctx)
	if state.IsAuthenticated() {
		return state.User, true
	}
	return nil, false
}

// SetRequestID returns a child context carrying the request ID.
func SetRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID, or empty string.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
