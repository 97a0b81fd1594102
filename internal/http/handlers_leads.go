package httpx

import (
	"log/slog"
	"net/http"

	"github.com/lumenshop/storefront/internal/domain/model"
	"github.com/lumenshop/storefront/internal/service"
)

// LeadHandlers captures chat-widget leads. The endpoint is public: the
// widget shows to anonymous visitors too.
type LeadHandlers struct {
	Svc    *service.LeadService
	Logger *slog.Logger
}

type leadRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Message string `json:"message"`
	Page    string `json:"page"`
}

// Create handles POST /api/leads.
func (h *LeadHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	lead := model.Lead{
		Name:    req.Name,
		Contact: req.Contact,
		Message: req.Message,
		Page:    req.Page,
	}
	if user, ok := UserFromContext(r.Context()); ok {
		lead.UserID = user.ID
	}

	saved, err := h.Svc.Capture(r.Context(), lead)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "lead capture failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"lead": saved})
}
