package ports

import (
	"context"
	"time"

	"github.com/lumenshop/storefront/internal/domain/model"
)

// ProductQuery narrows a catalog listing.
type ProductQuery struct {
	Search string
	Page   int
	Limit  int
}

// CatalogAPI reads catalog and blog content from the backend.
type CatalogAPI interface {
	ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, error)
	GetProduct(ctx context.Context, slug string) (model.Product, error)
	ListPosts(ctx context.Context, page int) ([]model.Post, error)
	GetPost(ctx context.Context, slug string) (model.Post, error)
}

// CartItemInput adds a product to the cart.
type CartItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartAPI operates on the authenticated visitor's cart.
type CartAPI interface {
	GetCart(ctx context.Context) (model.Cart, error)
	AddItem(ctx context.Context, in CartItemInput) (model.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (model.Cart, error)
}

// AdminAPI reads the admin-only views from the backend.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]model.Account, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetSettings(ctx context.Context) (model.Settings, error)
	GetStats(ctx context.Context) (model.StoreStats, error)
}

// LeadAPI forwards chat-widget leads to the backend.
type LeadAPI interface {
	SubmitLead(ctx context.Context, lead model.Lead) (model.Lead, error)
}

// LeadSink mirrors a captured lead to an external notification target
// (e.g. a team webhook). Delivery is best-effort.
type LeadSink interface {
	Deliver(ctx context.Context, lead model.Lead) error
}

// ContentCache is a byte-blob cache for backend content.
type ContentCache interface {
	// Get returns the cached value, or nil with no error when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}
