package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	"github.com/lumenshop/storefront/internal/ports"
	"github.com/lumenshop/storefront/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Catalog *service.CatalogService
	Cart    ports.CartAPI
	Admin   *service.AdminService
	Leads   *service.LeadService
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router. The session
// middleware (ResolveSession) is applied outside, around the whole
// handler chain; the guards registered here consume what it installs.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Logger: logger}
	storeHandlers := &StoreHandlers{Catalog: services.Catalog, Cart: services.Cart, Logger: logger}
	adminHandlers := &AdminHandlers{Svc: services.Admin, Logger: logger}
	leadHandlers := &LeadHandlers{Svc: services.Leads, Logger: logger}
	pageHandlers := &PageHandlers{}

	registerAuthRoutes(mux, authHandlers)
	registerStoreRoutes(mux, storeHandlers, logger)
	registerAdminRoutes(mux, adminHandlers, logger)
	registerLeadRoutes(mux, leadHandlers)
	registerPageRoutes(mux, pageHandlers, logger)

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("ok"))
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Status)

	// Browser-facing sign-in flow.
	mux.HandleFunc("GET /auth/login", h.LoginPage)
	mux.HandleFunc("POST /auth/login", h.LoginForm)
}

func registerStoreRoutes(mux *http.ServeMux, h *StoreHandlers, logger *slog.Logger) {
	// Catalog and blog are public.
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.GetProduct)
	mux.HandleFunc("GET /api/posts", h.ListPosts)
	mux.HandleFunc("GET /api/posts/{slug}", h.GetPost)

	// The cart belongs to a signed-in visitor.
	requireAuth := RequireAuth(logger)
	mux.Handle("GET /api/cart", requireAuth(http.HandlerFunc(h.GetCart)))
	mux.Handle("POST /api/cart/items", requireAuth(http.HandlerFunc(h.AddCartItem)))
	mux.Handle("DELETE /api/cart/items/{id}", requireAuth(http.HandlerFunc(h.RemoveCartItem)))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers, logger *slog.Logger) {
	adminOnly := RequireRole(logger, domainauth.RoleAdmin)
	mux.Handle("GET /api/admin/dashboard", adminOnly(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /api/admin/users", adminOnly(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /api/admin/orders", adminOnly(http.HandlerFunc(h.ListOrders)))
	mux.Handle("GET /api/admin/settings", adminOnly(http.HandlerFunc(h.GetSettings)))
}

func registerLeadRoutes(mux *http.ServeMux, h *LeadHandlers) {
	mux.HandleFunc("POST /api/leads", h.Create)
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, logger *slog.Logger) {
	requireAuth := RequireAuth(logger)
	adminOnly := RequireRole(logger, domainauth.RoleAdmin)

	mux.HandleFunc("GET /", h.Home)
	mux.HandleFunc("GET /products", h.Products)
	mux.HandleFunc("GET /blog", h.Blog)
	mux.Handle("GET /cart", requireAuth(http.HandlerFunc(h.Cart)))
	mux.Handle("GET /account", requireAuth(http.HandlerFunc(h.Account)))
	mux.Handle("GET /admin", adminOnly(http.HandlerFunc(h.Admin)))
	mux.Handle("GET /admin/", adminOnly(http.HandlerFunc(h.Admin)))
}
