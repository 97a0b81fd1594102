package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenshop/storefront/internal/backend"
	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	"github.com/lumenshop/storefront/internal/ports"
	"github.com/lumenshop/storefront/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.String("request_id", RequestIDFrom(r.Context())),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID returns a middleware that tags every request with an ID,
// honoring an inbound X-Request-Id from the edge proxy.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			ctx := SetRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialStoreFactory binds a credential store to one exchange. Both
// the cookie-pair and the Redis session-id adapters implement it.
type CredentialStoreFactory interface {
	ForExchange(w http.ResponseWriter, r *http.Request) ports.CredentialStore
}

// ResolveSession returns a middleware that equips every request with its
// credential store and a session controller. It performs no network
// call itself; the route guards (and any handler that needs identity)
// trigger CheckAuth, which the controller dedupes per exchange.
func ResolveSession(factory CredentialStoreFactory, authAPI ports.AuthAPI, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := factory.ForExchange(w, r)
			ctl := service.NewSessionController(service.SessionControllerOptions{
				Auth:        authAPI,
				Credentials: store,
				Logger:      logger,
			})

			ctx := backend.WithCredentials(r.Context(), store)
			ctx = SetSessionController(ctx, ctl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns a route guard that admits any authenticated user.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return guard(logger, "")
}

// RequireRole returns a route guard that admits only the given role.
// An authenticated user with the wrong role is denied, not redirected:
// they are legitimately signed in, just under-privileged.
func RequireRole(logger *slog.Logger, role domainauth.Role) func(http.Handler) http.Handler {
	return guard(logger, role)
}

func guard(logger *slog.Logger, role domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctl, ok := SessionControllerFrom(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "route guard without session middleware", "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			state, err := ctl.CheckAuth(r.Context())
			if err != nil {
				// Transient failure: the controller preserved the prior
				// state, so an unsettled state falls through to Pending.
				logger.WarnContext(r.Context(), "session check failed", "error", err)
			}

			switch decision := domainauth.Authorize(state, role); decision.Kind {
			case domainauth.DecisionAllow:
				ctx := SetAuthState(r.Context(), state)
				next.ServeHTTP(w, r.WithContext(ctx))
			case domainauth.DecisionRedirect:
				unauthorized(w, r, decision.RedirectTo)
			case domainauth.DecisionDeny:
				accessDenied(w, r, decision.Role)
			case domainauth.DecisionPending:
				pending(w, r)
			default:
				unauthorized(w, r, domainauth.LoginPath)
			}
		})
	}
}

// unauthorized redirects browser requests to the login page carrying the
// original destination; API requests get a 401 JSON body.
func unauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsBrowserRequest(r) {
		redirectToLogin(w, r, loginPath)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errAuthenticationRequired,
	})
}

// accessDenied renders the access-denied view showing the visitor's
// current role so the mismatch is self-explanatory. Never a redirect.
func accessDenied(w http.ResponseWriter, r *http.Request, role domainauth.Role) {
	if IsBrowserRequest(r) {
		renderAccessDenied(w, role)
		return
	}
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":   "insufficient_permissions",
		"message": "insufficient permissions",
		"role":    string(role),
	})
}

// pending answers a request whose session state could not be settled
// (e.g. the identity check hit a network blip): browsers get a loading
// placeholder that retries, API clients a 503 with Retry-After.
func pending(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		renderLoading(w)
		return
	}
	w.Header().Set("Retry-After", "1")
	WriteError(w, ErrorParams{
		Code:    http.StatusServiceUnavailable,
		ErrCode: "session_pending",
		Err:     errSessionPending,
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := loginPath + "?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// safeRedirectPath ensures the provided redirect is a same-origin
// relative path starting with "/" and not an absolute URL. Returns "/"
// when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}

// IsBrowserRequest reports whether the request should get HTML behavior
// (redirects, rendered pages) rather than JSON errors.
// API routes are explicitly not browser requests; otherwise the Accept
// header decides.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes.
		return true
	}
	return strings.Contains(accept, "text/html")
}
