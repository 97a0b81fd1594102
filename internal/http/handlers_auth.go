package httpx

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

// AuthHandlers provides HTTP handlers for the session lifecycle. All of
// them drive the per-exchange session controller installed by the
// ResolveSession middleware; none touch credentials directly.
type AuthHandlers struct {
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the JSON body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest is the JSON body of POST /api/auth/register.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		WriteAppError(w, apperrors.ValidationField("email", "email is required"))
		return
	}
	if req.Password == "" {
		WriteAppError(w, apperrors.ValidationField("password", "password is required"))
		return
	}

	ctl, ok := SessionControllerFrom(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session middleware not installed"))
		return
	}

	state, err := ctl.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger().WarnContext(r.Context(), "login failed", "error", err)
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          state.User,
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		WriteAppError(w, apperrors.ValidationField("name", "name is required"))
		return
	}
	if req.Email == "" {
		WriteAppError(w, apperrors.ValidationField("email", "email is required"))
		return
	}
	if req.Password == "" {
		WriteAppError(w, apperrors.ValidationField("password", "password is required"))
		return
	}

	ctl, ok := SessionControllerFrom(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session middleware not installed"))
		return
	}

	state, err := ctl.Register(r.Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "registration failed", "error", err)
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"authenticated": true,
		"user":          state.User,
	})
}

// Logout handles POST /api/auth/logout. The local session always ends;
// the backend notification inside the controller is best-effort.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctl, ok := SessionControllerFrom(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session middleware not installed"))
		return
	}

	ctl.Logout(r.Context())
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Status handles GET /api/auth/me: the identity check the frontend runs
// on boot. Anonymous is a normal answer here, not an error.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	ctl, ok := SessionControllerFrom(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session middleware not installed"))
		return
	}

	state, err := ctl.CheckAuth(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "session check failed", "error", err)
		WriteAppError(w, err)
		return
	}

	if !state.IsAuthenticated() {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          state.User,
	})
}

// LoginPage handles GET /auth/login: the browser-facing sign-in form.
// The redirect_uri query parameter preserves the originally requested
// location across the login round trip.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	renderLoginPage(w, redirectURI, "")
}

// LoginForm handles POST /auth/login from the browser form, redirecting
// back to the preserved destination on success.
func (h *AuthHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteAppError(w, apperrors.Validation("invalid form submission"))
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	redirectURI := safeRedirectPath(r.PostFormValue("redirect_uri"))

	if email == "" || password == "" {
		renderLoginPage(w, redirectURI, "Email and password are required.")
		return
	}

	ctl, ok := SessionControllerFrom(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session middleware not installed"))
		return
	}

	if _, err := ctl.Login(r.Context(), email, password); err != nil {
		h.logger().WarnContext(r.Context(), "login failed", "error", err)
		if apperrors.IsUnavailable(err) {
			renderLoginPage(w, redirectURI, "The store is unreachable right now; please try again.")
			return
		}
		renderLoginPage(w, redirectURI, "Sign-in failed; check your email and password.")
		return
	}

	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<form method="post" action="/auth/login">
<input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>
</body>
</html>
`))

func renderLoginPage(w http.ResponseWriter, redirectURI, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = loginTmpl.Execute(w, map[string]string{
		"RedirectURI": redirectURI,
		"Message":     message,
	})
}
