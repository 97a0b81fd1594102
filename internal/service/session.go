package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Auth        ports.AuthAPI
	Credentials ports.CredentialStore
	Logger      *slog.Logger
}

// SessionController owns the authentication state machine:
//
//	unknown -> checking -> authenticated | anonymous
//
// It is the only writer of the session state; every transition happens
// inside its methods, under one mutex. A concurrent CheckAuth joins the
// in-flight identity fetch instead of issuing a second one.
type SessionController struct {
	auth   ports.AuthAPI
	creds  ports.CredentialStore
	logger *slog.Logger

	mu       sync.Mutex
	state    domainauth.State
	gen      uint64
	inflight *authCheck
}

// authCheck is the shared result of one in-flight identity fetch.
type authCheck struct {
	done  chan struct{}
	state domainauth.State
	err   error
}

// NewSessionController constructs a controller in the Unknown state.
func NewSessionController(opts SessionControllerOptions) *SessionController {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionController{
		auth:   opts.Auth,
		creds:  opts.Credentials,
		logger: logger,
		state:  domainauth.Unknown(),
	}
}

// State returns the current state snapshot for synchronous reads.
func (s *SessionController) State() domainauth.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CheckAuth resolves the session state, fetching the identity from the
// backend when needed. It is idempotent under concurrency: overlapping
// calls share one identity fetch, and a call while already authenticated
// returns the current state without a network round trip.
func (s *SessionController) CheckAuth(ctx context.Context) (domainauth.State, error) {
	return s.checkAuth(ctx, false)
}

// Revalidate forces a fresh identity fetch even when already
// authenticated, e.g. after a role change on the backend.
func (s *SessionController) Revalidate(ctx context.Context) (domainauth.State, error) {
	return s.checkAuth(ctx, true)
}

func (s *SessionController) checkAuth(ctx context.Context, force bool) (domainauth.State, error) {
	s.mu.Lock()

	if !force && s.state.IsAuthenticated() {
		st := s.state
		s.mu.Unlock()
		return st, nil
	}

	if chk := s.inflight; chk != nil {
		s.mu.Unlock()
		return s.awaitCheck(ctx, chk)
	}

	// No stored credential means anonymous; don't burn a network call to
	// learn what the store already tells us.
	if _, ok := s.creds.Get(); !ok {
		s.state = domainauth.Anonymous()
		st := s.state
		s.mu.Unlock()
		return st, nil
	}

	prev := s.state
	startGen := s.gen
	chk := &authCheck{done: make(chan struct{})}
	s.inflight = chk
	s.state = domainauth.Checking(prev.User)
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)

	s.mu.Lock()
	// A login/logout that raced the fetch owns the state; the stale
	// result must neither overwrite it nor clear its credentials.
	stale := s.gen != startGen
	next := s.state
	switch {
	case err == nil:
		next = domainauth.Authenticated(user)
	case apperrors.IsUnauthorized(err) || apperrors.IsSessionExpired(err):
		// A definitive rejection (post-refresh) ends the session.
		if !stale {
			s.creds.Clear()
		}
		next = domainauth.Anonymous()
		err = nil
	default:
		// Transient failure (network, upstream 5xx): a blip must not log
		// the user out. Restore the pre-check state.
		next = prev
	}

	if !stale {
		s.state = next
	}
	chk.state = s.state
	chk.err = err
	s.inflight = nil
	st := s.state
	s.mu.Unlock()

	close(chk.done)
	return st, err
}

// awaitCheck blocks on an in-flight identity fetch. A caller whose
// context ends early detaches without disturbing the fetch; the session
// transition still commits process-wide.
func (s *SessionController) awaitCheck(ctx context.Context, chk *authCheck) (domainauth.State, error) {
	select {
	case <-chk.done:
		return chk.state, chk.err
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Login exchanges credentials for a session. The token pair is persisted
// before the state flips to authenticated so the next pipeline call
// already carries it.
func (s *SessionController) Login(ctx context.Context, email, password string) (domainauth.State, error) {
	user, creds, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return s.State(), err
	}
	return s.commitSession(ctx, user, creds)
}

// Register creates an account and starts a session, mirroring Login.
func (s *SessionController) Register(ctx context.Context, in ports.RegisterInput) (domainauth.State, error) {
	user, creds, err := s.auth.Register(ctx, in)
	if err != nil {
		return s.State(), err
	}
	return s.commitSession(ctx, user, creds)
}

func (s *SessionController) commitSession(ctx context.Context, user domainauth.User, creds domainauth.Credentials) (domainauth.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.creds.Set(creds); err != nil {
		s.logger.WarnContext(ctx, "persist credentials failed", "error", err)
		return s.state, apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist credentials")
	}
	s.gen++
	s.state = domainauth.Authenticated(user)
	return s.state, nil
}

// Logout ends the local session unconditionally. The backend call is
// best-effort: credentials and state are cleared even when it fails,
// because the goal is to end the local session.
func (s *SessionController) Logout(ctx context.Context) domainauth.State {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "backend logout failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Clear()
	s.gen++
	s.state = domainauth.Anonymous()
	return s.state
}
