package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	mockauth "github.com/lumenshop/storefront/internal/mocks/auth"
)

func newTestClient(t *testing.T, serverURL string, onExpired func(ctx context.Context)) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:          serverURL,
		HTTPClient:       &http.Client{},
		OnSessionExpired: onExpired,
	})
	require.NoError(t, err)
	return client
}

func ctxWithCreds(store *mockauth.MemoryCredentialStore) context.Context {
	return WithCredentials(context.Background(), store)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)

	_, err = NewClient(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	_, err = NewClient(Options{BaseURL: "https://api.example.com"})
	assert.NoError(t, err)
}

func TestClient_Do_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok-1", RefreshToken: "ref-1"})

	client := newTestClient(t, srv.URL, nil)
	var out map[string]string
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/products", Out: &out})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "yes", out["ok"])
}

func TestClient_Do_TransportErrorIsUnavailable(t *testing.T) {
	// A closed server: connection refused, no response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})

	client := newTestClient(t, srv.URL, nil)
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/products"})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	// Transport failures never end the session.
	assert.Equal(t, 0, store.ClearCalls())
	_, present := store.Get()
	assert.True(t, present)
}

func TestClient_Do_RefreshThenRetrySucceeds(t *testing.T) {
	var refreshCalls, apiCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ref-old", in.RefreshToken)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "tok-new",
			"refreshToken": "ref-new",
		})
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "cart-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok-old", RefreshToken: "ref-old"})

	client := newTestClient(t, srv.URL, nil)
	var out map[string]string
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/cart", Out: &out})

	require.NoError(t, err)
	assert.Equal(t, "cart-1", out["id"])
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, int64(2), apiCalls.Load())

	// The rotated pair replaced the old one.
	creds, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "tok-new", creds.AccessToken)
	assert.Equal(t, "ref-new", creds.RefreshToken)
}

func TestClient_Do_SecondUnauthorizedEndsSession(t *testing.T) {
	var refreshCalls atomic.Int64
	var expiredNotices atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "tok-new",
			"refreshToken": "ref-new",
		})
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		// Rejects even the refreshed token.
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok-old", RefreshToken: "ref-old"})

	client := newTestClient(t, srv.URL, func(context.Context) { expiredNotices.Add(1) })
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/cart"})

	require.Error(t, err)
	assert.True(t, apperrors.IsSessionExpired(err))
	// Exactly one refresh, exactly one retry, then teardown. The hook
	// only fires for failed refreshes, not for a rejected retry.
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, int64(0), expiredNotices.Load())
	_, present := store.Get()
	assert.False(t, present)
}

func TestClient_Do_FailedRefreshFiresHookOnce(t *testing.T) {
	var expiredNotices atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})

	client := newTestClient(t, srv.URL, func(context.Context) { expiredNotices.Add(1) })
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/cart"})

	require.Error(t, err)
	assert.True(t, apperrors.IsSessionExpired(err))
	assert.Equal(t, int64(1), expiredNotices.Load())
	_, present := store.Get()
	assert.False(t, present)
}

func TestClient_Do_ConcurrentRefreshCollapses(t *testing.T) {
	const workers = 16

	// All workers must observe their 401 before any refresh settles, so
	// the expiries overlap and singleflight can collapse them.
	var arrivals atomic.Int64
	release := make(chan struct{})

	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		n := refreshCalls.Add(1)
		// Hold the flight open long enough for every joiner to arrive.
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  fmt.Sprintf("tok-new-%d", n),
			"refreshToken": fmt.Sprintf("ref-new-%d", n),
		})
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok-old" {
			if arrivals.Add(1) == workers {
				close(release)
			}
			<-release
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "cart-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)

	// Each worker carries its own store (one per browser exchange), all
	// holding the same expired pair so their refreshes share a key.
	stores := make([]*mockauth.MemoryCredentialStore, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		stores[i] = mockauth.NewMemoryCredentialStore()
		stores[i].Seed(domainauth.Credentials{AccessToken: "tok-old", RefreshToken: "ref-old"})
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Do(ctxWithCreds(stores[i]), Request{Method: http.MethodGet, Path: "/cart"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), refreshCalls.Load(), "concurrent 401s must share one refresh")
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		creds, ok := stores[i].Get()
		require.True(t, ok, "worker %d store", i)
		assert.Equal(t, "ref-new-1", creds.RefreshToken, "every store observes the rotation")
	}
}

func TestClient_Do_UnauthorizedWithoutStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/cart"})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, apperrors.IsSessionExpired(err))
}

func TestClient_Do_UnauthorizedWithEmptyStore(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()

	client := newTestClient(t, srv.URL, nil)
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/cart"})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, int64(0), refreshCalls.Load(), "nothing to refresh without a stored pair")
}

func TestClient_Do_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "forbidden", status: http.StatusForbidden, check: apperrors.IsForbidden},
		{name: "not found", status: http.StatusNotFound, check: apperrors.IsNotFound},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, check: apperrors.IsValidation},
		{name: "server error", status: http.StatusInternalServerError, check: func(err error) bool {
			return apperrors.GetCode(err) == apperrors.ErrCodeInternal
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope", "message": "nope"})
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, nil)
			err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestClient_Do_RefreshResponseMissingTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		// Access token only: an unusable half-pair.
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-new"})
	})
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := mockauth.NewMemoryCredentialStore()
	store.Seed(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})

	client := newTestClient(t, srv.URL, nil)
	err := client.Do(ctxWithCreds(store), Request{Method: http.MethodGet, Path: "/cart"})

	require.Error(t, err)
	assert.True(t, apperrors.IsSessionExpired(err))
	_, present := store.Get()
	assert.False(t, present)
}
