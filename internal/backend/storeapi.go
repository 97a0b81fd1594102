package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lumenshop/storefront/internal/domain/model"
	"github.com/lumenshop/storefront/internal/ports"
)

// StoreClient implements the content-facing backend contracts (catalog,
// blog, cart, admin, leads). All calls share the pipeline, so protected
// endpoints get transparent refresh for free.
type StoreClient struct {
	client *Client
}

var (
	_ ports.CatalogAPI = (*StoreClient)(nil)
	_ ports.CartAPI    = (*StoreClient)(nil)
	_ ports.AdminAPI   = (*StoreClient)(nil)
	_ ports.LeadAPI    = (*StoreClient)(nil)
)

// NewStoreClient wraps the pipeline with the storefront endpoint contract.
func NewStoreClient(client *Client) *StoreClient {
	return &StoreClient{client: client}
}

// ListProducts fetches a page of the catalog.
func (s *StoreClient) ListProducts(ctx context.Context, q ports.ProductQuery) ([]model.Product, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var out struct {
		Products []model.Product `json:"products"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/products", Query: query, Out: &out}); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct fetches one catalog entry by slug.
func (s *StoreClient) GetProduct(ctx context.Context, slug string) (model.Product, error) {
	var out struct {
		Product model.Product `json:"product"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/products/" + url.PathEscape(slug), Out: &out}); err != nil {
		return model.Product{}, err
	}
	return out.Product, nil
}

// ListPosts fetches a page of the blog.
func (s *StoreClient) ListPosts(ctx context.Context, page int) ([]model.Post, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	var out struct {
		Posts []model.Post `json:"posts"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/posts", Query: query, Out: &out}); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// GetPost fetches one blog entry by slug.
func (s *StoreClient) GetPost(ctx context.Context, slug string) (model.Post, error) {
	var out struct {
		Post model.Post `json:"post"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/posts/" + url.PathEscape(slug), Out: &out}); err != nil {
		return model.Post{}, err
	}
	return out.Post, nil
}

// GetCart fetches the authenticated visitor's cart.
func (s *StoreClient) GetCart(ctx context.Context) (model.Cart, error) {
	var out struct {
		Cart model.Cart `json:"cart"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/cart", Out: &out}); err != nil {
		return model.Cart{}, err
	}
	return out.Cart, nil
}

// AddItem adds a product to the cart.
func (s *StoreClient) AddItem(ctx context.Context, in ports.CartItemInput) (model.Cart, error) {
	var out struct {
		Cart model.Cart `json:"cart"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodPost, Path: "/cart/items", Body: in, Out: &out}); err != nil {
		return model.Cart{}, err
	}
	return out.Cart, nil
}

// RemoveItem removes a line from the cart.
func (s *StoreClient) RemoveItem(ctx context.Context, itemID string) (model.Cart, error) {
	var out struct {
		Cart model.Cart `json:"cart"`
	}
	req := Request{Method: http.MethodDelete, Path: "/cart/items/" + url.PathEscape(itemID), Out: &out}
	if err := s.client.Do(ctx, req); err != nil {
		return model.Cart{}, err
	}
	return out.Cart, nil
}

// ListUsers fetches the admin user table.
func (s *StoreClient) ListUsers(ctx context.Context) ([]model.Account, error) {
	var out struct {
		Users []model.Account `json:"users"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/users", Out: &out}); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ListOrders fetches the admin order table.
func (s *StoreClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out struct {
		Orders []model.Order `json:"orders"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/orders", Out: &out}); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetSettings fetches the store settings blob.
func (s *StoreClient) GetSettings(ctx context.Context) (model.Settings, error) {
	var out struct {
		Settings model.Settings `json:"settings"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/settings", Out: &out}); err != nil {
		return model.Settings{}, err
	}
	return out.Settings, nil
}

// GetStats fetches the aggregate dashboard block.
func (s *StoreClient) GetStats(ctx context.Context) (model.StoreStats, error) {
	var out struct {
		Stats model.StoreStats `json:"stats"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/stats", Out: &out}); err != nil {
		return model.StoreStats{}, err
	}
	return out.Stats, nil
}

// SubmitLead forwards a chat-widget lead to the backend.
func (s *StoreClient) SubmitLead(ctx context.Context, lead model.Lead) (model.Lead, error) {
	var out struct {
		Lead model.Lead `json:"lead"`
	}
	if err := s.client.Do(ctx, Request{Method: http.MethodPost, Path: "/leads", Body: lead, Out: &out}); err != nil {
		return model.Lead{}, err
	}
	return out.Lead, nil
}
