package httpx

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
	"github.com/lumenshop/storefront/internal/service"
)

const (
	defaultPageLimit = 24
	maxPageLimit     = 100
)

// StoreHandlers serves the public catalog and blog plus the
// authenticated cart endpoints.
type StoreHandlers struct {
	Catalog *service.CatalogService
	Cart    ports.CartAPI
	Logger  *slog.Logger
}

// ListProducts handles GET /api/products.
func (h *StoreHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := ports.ProductQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", defaultPageLimit),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > maxPageLimit {
		q.Limit = defaultPageLimit
	}

	products, err := h.Catalog.ListProducts(r.Context(), q)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "list products failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct handles GET /api/products/{slug}.
func (h *StoreHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		WriteAppError(w, apperrors.ValidationField("slug", "product slug is required"))
		return
	}

	product, err := h.Catalog.GetProduct(r.Context(), slug)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.Logger.ErrorContext(r.Context(), "get product failed", "slug", slug, "error", err)
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"product": product})
}

// ListPosts handles GET /api/posts.
func (h *StoreHandlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	posts, err := h.Catalog.ListPosts(r.Context(), page)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "list posts failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPost handles GET /api/posts/{slug}.
func (h *StoreHandlers) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		WriteAppError(w, apperrors.ValidationField("slug", "post slug is required"))
		return
	}

	post, err := h.Catalog.GetPost(r.Context(), slug)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.Logger.ErrorContext(r.Context(), "get post failed", "slug", slug, "error", err)
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"post": post})
}

// GetCart handles GET /api/cart. Guarded: only authenticated visitors
// reach it.
func (h *StoreHandlers) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Cart.GetCart(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "get cart failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

// AddCartItem handles POST /api/cart/items.
func (h *StoreHandlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var in ports.CartItemInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.ProductID == "" {
		WriteAppError(w, apperrors.ValidationField("product_id", "product_id is required"))
		return
	}
	if in.Quantity < 1 {
		WriteAppError(w, apperrors.ValidationField("quantity", "quantity must be at least 1"))
		return
	}

	cart, err := h.Cart.AddItem(r.Context(), in)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "add cart item failed", "product_id", in.ProductID, "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

// RemoveCartItem handles DELETE /api/cart/items/{id}.
func (h *StoreHandlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		WriteAppError(w, apperrors.ValidationField("id", "cart item id is required"))
		return
	}

	cart, err := h.Cart.RemoveItem(r.Context(), itemID)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "remove cart item failed", "item_id", itemID, "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
