package httpx

import (
	"errors"
	"html/template"
	"net/http"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
)

var (
	errAuthenticationRequired = errors.New("authentication required")
	errSessionPending         = errors.New("session state not settled yet, retry shortly")
)

// The storefront's real markup lives with the frontend; these shells
// exist so the guard semantics (login redirect, access denied, loading)
// have a rendered surface and the page routes respond sensibly.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title>{{if .Refresh}}<meta http-equiv="refresh" content="1">{{end}}</head>
<body>
<h1>{{.Title}}</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Sign in</a></p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Message  string
	LoginURL string
	Refresh  bool
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		// Headers are gone; nothing left to do for this response.
		return
	}
}

func renderAccessDenied(w http.ResponseWriter, role domainauth.Role) {
	renderPage(w, http.StatusForbidden, pageData{
		Title:   "Access denied",
		Message: "Your account role (" + string(role) + ") does not grant access to this page.",
	})
}

func renderLoading(w http.ResponseWriter) {
	renderPage(w, http.StatusOK, pageData{
		Title:   "Loading",
		Message: "Checking your session…",
		Refresh: true,
	})
}
