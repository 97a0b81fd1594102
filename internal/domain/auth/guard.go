package auth

// LoginPath is the canonical path guards redirect anonymous visitors to.
// The HTTP layer appends the originally requested location so the login
// flow can return the user to it.
const LoginPath = "/auth/login"

// DecisionKind enumerates route authorization outcomes.
type DecisionKind string

const (
	// DecisionPending means the session state is not settled yet; render
	// a loading placeholder rather than committing to allow or deny.
	DecisionPending DecisionKind = "pending"
	// DecisionAllow grants access to the protected content.
	DecisionAllow DecisionKind = "allow"
	// DecisionRedirect sends an anonymous visitor to the login flow.
	DecisionRedirect DecisionKind = "redirect"
	// DecisionDeny refuses an authenticated but under-privileged user.
	// Deny never redirects: the user is legitimately signed in.
	DecisionDeny DecisionKind = "deny"
)

// Decision is the result of authorizing a route against session state.
// It is stateless and derived; it is never persisted.
type Decision struct {
	Kind DecisionKind
	// RedirectTo is set when Kind is DecisionRedirect.
	RedirectTo string
	// Role is the visitor's current role when Kind is DecisionDeny, so
	// the mismatch can be shown to the user.
	Role Role
}

// Authorize is the route guard: a pure function of session state and an
// optional required role. An empty requiredRole means any authenticated
// user is allowed.
func Authorize(s State, requiredRole Role) Decision {
	switch s.Phase {
	case PhaseUnknown, PhaseChecking:
		return Decision{Kind: DecisionPending}
	case PhaseAnonymous:
		return Decision{Kind: DecisionRedirect, RedirectTo: LoginPath}
	case PhaseAuthenticated:
		if s.User == nil {
			// Authenticated without a user violates the state invariant;
			// fail closed by treating it as anonymous.
			return Decision{Kind: DecisionRedirect, RedirectTo: LoginPath}
		}
		if requiredRole != "" && s.User.Role != requiredRole {
			return Decision{Kind: DecisionDeny, Role: s.User.Role}
		}
		return Decision{Kind: DecisionAllow}
	default:
		return Decision{Kind: DecisionRedirect, RedirectTo: LoginPath}
	}
}
