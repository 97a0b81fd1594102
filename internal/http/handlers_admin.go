package httpx

import (
	"log/slog"
	"net/http"

	"github.com/lumenshop/storefront/internal/service"
)

// AdminHandlers serves the role-gated admin API. Routes using these are
// wrapped in RequireRole(RoleAdmin); the handlers themselves trust the
// guard.
type AdminHandlers struct {
	Svc    *service.AdminService
	Logger *slog.Logger
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Dashboard(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "admin dashboard failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListUsers(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "admin list users failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Svc.ListOrders(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "admin list orders failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetSettings handles GET /api/admin/settings.
func (h *AdminHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Svc.GetSettings(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "admin get settings failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"settings": settings})
}
