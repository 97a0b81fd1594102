package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	mockauth "github.com/lumenshop/storefront/internal/mocks/auth"
	"github.com/lumenshop/storefront/internal/ports"
)

func newTestController(api ports.AuthAPI, store ports.CredentialStore) *SessionController {
	return NewSessionController(SessionControllerOptions{Auth: api, Credentials: store})
}

func seededStore() *mockauth.MemoryCredentialStore {
	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})
	return store
}

func TestSessionController_StartsUnknown(t *testing.T) {
	ctl := newTestController(mockauth.NewMockAuthAPI(), mockauth.NewMemoryCredentialStore())
	assert.Equal(t, domainauth.PhaseUnknown, ctl.State().Phase)
}

func TestSessionController_CheckAuth_NoCredentialsIsAnonymous(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	ctl := newTestController(api, mockauth.NewMemoryCredentialStore())

	state, err := ctl.CheckAuth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseAnonymous, state.Phase)
	assert.Equal(t, 0, api.MeCalls(), "no network call without stored credentials")
}

func TestSessionController_CheckAuth_Authenticates(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	ctl := newTestController(api, seededStore())

	state, err := ctl.CheckAuth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseAuthenticated, state.Phase)
	require.NotNil(t, state.User)
	assert.Equal(t, "mock-user-1", state.User.ID)
	assert.Equal(t, 1, api.MeCalls())
}

func TestSessionController_CheckAuth_AuthenticatedIsNoOp(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	ctl := newTestController(api, seededStore())

	_, err := ctl.CheckAuth(context.Background())
	require.NoError(t, err)
	_, err = ctl.CheckAuth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, api.MeCalls(), "second check while authenticated must not refetch")
}

func TestSessionController_Revalidate_ForcesRefetch(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	ctl := newTestController(api, seededStore())

	_, err := ctl.CheckAuth(context.Background())
	require.NoError(t, err)
	_, err = ctl.Revalidate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, api.MeCalls())
}

func TestSessionController_CheckAuth_ConcurrentCallsShareOneFetch(t *testing.T) {
	const callers = 12

	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once

	api := mockauth.NewMockAuthAPI()
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		once.Do(func() { close(started) })
		<-proceed
		return domainauth.User{ID: "u1", Role: domainauth.RoleCustomer}, nil
	}
	ctl := newTestController(api, seededStore())

	var wg sync.WaitGroup
	states := make([]domainauth.State, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		states[0], errs[0] = ctl.CheckAuth(context.Background())
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i], errs[i] = ctl.CheckAuth(context.Background())
		}(i)
	}
	// Give the joiners a moment to park on the in-flight check.
	time.Sleep(20 * time.Millisecond)
	close(proceed)
	wg.Wait()

	assert.Equal(t, 1, api.MeCalls(), "overlapping checks must share one identity fetch")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, domainauth.PhaseAuthenticated, states[i].Phase, "caller %d", i)
	}
}

func TestSessionController_CheckAuth_RejectionClearsSession(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		return domainauth.User{}, apperrors.SessionExpired("session expired")
	}
	store := seededStore()
	ctl := newTestController(api, store)

	state, err := ctl.CheckAuth(context.Background())

	// A definitive rejection settles as anonymous, not as an error.
	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseAnonymous, state.Phase)
	assert.Equal(t, 1, store.ClearCalls())
}

func TestSessionController_CheckAuth_NetworkBlipPreservesState(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	store := seededStore()
	ctl := newTestController(api, store)

	// Authenticate first.
	_, err := ctl.CheckAuth(context.Background())
	require.NoError(t, err)

	// Then the backend becomes unreachable during a forced revalidation.
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		return domainauth.User{}, apperrors.Wrap(errors.New("dial tcp: refused"), apperrors.ErrCodeUnavailable, "backend unreachable")
	}
	state, err := ctl.Revalidate(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Equal(t, domainauth.PhaseAuthenticated, state.Phase, "a blip must not log the user out")
	assert.Equal(t, 0, store.ClearCalls())
	_, present := store.Get()
	assert.True(t, present)
}

func TestSessionController_CheckAuth_BlipFromUnknownStaysUnsettled(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		return domainauth.User{}, apperrors.Wrap(errors.New("dial tcp: refused"), apperrors.ErrCodeUnavailable, "backend unreachable")
	}
	ctl := newTestController(api, seededStore())

	state, err := ctl.CheckAuth(context.Background())

	require.Error(t, err)
	assert.Equal(t, domainauth.PhaseUnknown, state.Phase)
	assert.False(t, state.Settled())
}

func TestSessionController_Login_PersistsBeforeStateFlip(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	store := mockauth.NewMemoryCredentialStore()
	ctl := newTestController(api, store)

	state, err := ctl.Login(context.Background(), "a@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseAuthenticated, state.Phase)
	creds, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "mock-access", creds.AccessToken)
}

func TestSessionController_Login_StoreFailureKeepsStateOut(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	store := mockauth.NewMemoryCredentialStore()
	store.SetErr = errors.New("cookie jar full")
	ctl := newTestController(api, store)

	state, err := ctl.Login(context.Background(), "a@example.com", "pw")

	require.Error(t, err)
	assert.NotEqual(t, domainauth.PhaseAuthenticated, state.Phase,
		"state must not claim a session whose credentials were never persisted")
}

func TestSessionController_Login_BadCredentials(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	api.LoginFunc = func(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error) {
		return domainauth.User{}, domainauth.Credentials{}, apperrors.Unauthorized("invalid credentials")
	}
	ctl := newTestController(api, mockauth.NewMemoryCredentialStore())

	_, err := ctl.Login(context.Background(), "a@example.com", "wrong")

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, domainauth.PhaseUnknown, ctl.State().Phase)
}

func TestSessionController_Logout_ClearsDespiteBackendFailure(t *testing.T) {
	api := mockauth.NewMockAuthAPI()
	api.LogoutFunc = func(ctx context.Context) error {
		return apperrors.Wrap(errors.New("dial tcp: refused"), apperrors.ErrCodeUnavailable, "backend unreachable")
	}
	store := seededStore()
	ctl := newTestController(api, store)

	_, err := ctl.CheckAuth(context.Background())
	require.NoError(t, err)

	state := ctl.Logout(context.Background())

	assert.Equal(t, domainauth.PhaseAnonymous, state.Phase)
	assert.Equal(t, 1, store.ClearCalls())
	_, present := store.Get()
	assert.False(t, present)
}

func TestSessionController_LoginDuringCheckWins(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once

	api := mockauth.NewMockAuthAPI()
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		once.Do(func() { close(started) })
		<-proceed
		// Stale answer: by the time this lands, a login has happened.
		return domainauth.User{}, apperrors.Unauthorized("stale token")
	}
	store := seededStore()
	ctl := newTestController(api, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ctl.CheckAuth(context.Background())
	}()
	<-started

	state, err := ctl.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domainauth.PhaseAuthenticated, state.Phase)

	close(proceed)
	<-done

	// The stale rejection must not overwrite the fresh login, and must
	// not clear its freshly persisted credentials either.
	assert.Equal(t, domainauth.PhaseAuthenticated, ctl.State().Phase)
	creds, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "mock-access", creds.AccessToken)
}

func TestSessionController_AwaitCheck_CallerCancellationDetaches(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once

	api := mockauth.NewMockAuthAPI()
	api.MeFunc = func(ctx context.Context) (domainauth.User, error) {
		once.Do(func() { close(started) })
		<-proceed
		return domainauth.User{ID: "u1", Role: domainauth.RoleCustomer}, nil
	}
	ctl := newTestController(api, seededStore())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ctl.CheckAuth(context.Background())
	}()
	<-started

	// A joiner with an already-canceled context detaches immediately.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctl.CheckAuth(canceled)
	require.ErrorIs(t, err, context.Canceled)

	// The shared fetch still completes and commits.
	close(proceed)
	<-done
	assert.Equal(t, domainauth.PhaseAuthenticated, ctl.State().Phase)
}
