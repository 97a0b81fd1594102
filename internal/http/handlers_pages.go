package httpx

import (
	"net/http"
)

// PageHandlers renders the browser-facing page shells. The real frontend
// hydrates these client-side; the shells carry just enough to prove the
// route guards out end to end.
type PageHandlers struct{}

// Home handles GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderPage(w, http.StatusOK, pageData{Title: "Lumenshop"})
}

// Products handles GET /products.
func (h *PageHandlers) Products(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Title: "Products"})
}

// Blog handles GET /blog.
func (h *PageHandlers) Blog(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Title: "Blog"})
}

// Cart handles GET /cart. Guarded: RequireAuth wraps the route.
func (h *PageHandlers) Cart(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Title: "Your cart"})
}

// Account handles GET /account. Guarded: RequireAuth wraps the route.
func (h *PageHandlers) Account(w http.ResponseWriter, r *http.Request) {
	title := "Your account"
	if user, ok := UserFromContext(r.Context()); ok && user.Name != "" {
		title = "Account: " + user.Name
	}
	renderPage(w, http.StatusOK, pageData{Title: title})
}

// Admin handles GET /admin. Guarded: RequireRole(RoleAdmin) wraps it.
func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Title: "Store administration"})
}
