package auth

// Phase is the discriminant of the session state machine.
type Phase string

const (
	// PhaseUnknown means no identity check has been performed yet.
	PhaseUnknown Phase = "unknown"
	// PhaseChecking means an identity fetch is in flight.
	PhaseChecking Phase = "checking"
	// PhaseAuthenticated means the backend confirmed the identity.
	PhaseAuthenticated Phase = "authenticated"
	// PhaseAnonymous means there is no live session.
	PhaseAnonymous Phase = "anonymous"
)

// State is a snapshot of the session state machine. User is non-nil
// exactly when Phase is PhaseAuthenticated, except that a re-check may
// transiently carry the previous user through PhaseChecking.
type State struct {
	Phase Phase
	User  *User
}

// Unknown returns the initial state.
func Unknown() State { return State{Phase: PhaseUnknown} }

// Checking returns a checking state. The previous user, if any, is
// carried along so a transient re-check does not drop identity.
func Checking(prev *User) State { return State{Phase: PhaseChecking, User: prev} }

// Authenticated returns an authenticated state for the given user.
// The user is copied so the snapshot cannot be mutated through the
// caller's pointer.
func Authenticated(u User) State {
	return State{Phase: PhaseAuthenticated, User: &u}
}

// Anonymous returns the logged-out state.
func Anonymous() State { return State{Phase: PhaseAnonymous} }

// IsAuthenticated reports whether the state carries a confirmed identity.
func (s State) IsAuthenticated() bool {
	return s.Phase == PhaseAuthenticated && s.User != nil
}

// Settled reports whether the state machine has reached a terminal
// answer for the current check cycle.
func (s State) Settled() bool {
	return s.Phase == PhaseAuthenticated || s.Phase == PhaseAnonymous
}
