package auth

// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI         = (*MockAuthAPI)(nil)
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
)

// MockAuthAPI simulates the backend auth surface with per-method
// overrides and call counting. The counters make refresh and check
// deduplication assertions straightforward.
type MockAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error)
	RegisterFunc func(ctx context.Context, in ports.RegisterInput) (domainauth.User, domainauth.Credentials, error)
	MeFunc       func(ctx context.Context) (domainauth.User, error)
	LogoutFunc   func(ctx context.Context) error

	// DefaultUser is returned when no override is set.
	DefaultUser domainauth.User
	// DefaultCredentials is returned by Login/Register when no override is set.
	DefaultCredentials domainauth.Credentials

	mu          sync.Mutex
	loginCalls  int
	meCalls     int
	logoutCalls int
}

// NewMockAuthAPI creates a MockAuthAPI with a sensible default identity.
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{
		DefaultUser: domainauth.User{
			ID:    "mock-user-1",
			Name:  "Mock User",
			Email: "mock.user@example.com",
			Role:  domainauth.RoleCustomer,
		},
		DefaultCredentials: domainauth.Credentials{
			AccessToken:  "mock-access",
			RefreshToken: "mock-refresh",
		},
	}
}

func (m *MockAuthAPI) Login(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error) {
	m.mu.Lock()
	m.loginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return m.DefaultUser, m.DefaultCredentials, nil
}

func (m *MockAuthAPI) Register(ctx context.Context, in ports.RegisterInput) (domainauth.User, domainauth.Credentials, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	user := m.DefaultUser
	user.Name = in.Name
	user.Email = in.Email
	return user, m.DefaultCredentials, nil
}

func (m *MockAuthAPI) Me(ctx context.Context) (domainauth.User, error) {
	m.mu.Lock()
	m.meCalls++
	m.mu.Unlock()
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return m.DefaultUser, nil
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.logoutCalls++
	m.mu.Unlock()
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

// LoginCalls reports how many times Login ran.
func (m *MockAuthAPI) LoginCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls
}

// MeCalls reports how many times Me ran.
func (m *MockAuthAPI) MeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meCalls
}

// LogoutCalls reports how many times Logout ran.
func (m *MockAuthAPI) LogoutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logoutCalls
}

// MemoryCredentialStore is an in-memory credential store with call
// counters for asserting write and clear behavior.
type MemoryCredentialStore struct {
	mu         sync.Mutex
	creds      domainauth.Credentials
	present    bool
	setCalls   int
	clearCalls int

	// SetErr forces Set to fail when non-nil.
	SetErr error
}

// NewMemoryCredentialStore creates an empty store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Seed installs a credential pair without counting as a Set call.
func (s *MemoryCredentialStore) Seed(creds domainauth.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.present = creds.Valid()
}

func (s *MemoryCredentialStore) Get() (domainauth.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return domainauth.Credentials{}, false
	}
	return s.creds, true
}

func (s *MemoryCredentialStore) Set(creds domainauth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	if !creds.Valid() {
		return apperrors.Validation("credential pair must carry both tokens")
	}
	s.creds = creds
	s.present = true
	return nil
}

func (s *MemoryCredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	s.creds = domainauth.Credentials{}
	s.present = false
}

// SetCalls reports how many times Set ran.
func (s *MemoryCredentialStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

// ClearCalls reports how many times Clear ran.
func (s *MemoryCredentialStore) ClearCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCalls
}
