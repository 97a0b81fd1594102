package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	"github.com/lumenshop/storefront/internal/domain/model"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	mockauth "github.com/lumenshop/storefront/internal/mocks/auth"
	"github.com/lumenshop/storefront/internal/ports"
	"github.com/lumenshop/storefront/internal/service"
)

type fakeCatalogAPI struct {
	products []model.Product
	posts    []model.Post
}

func (f *fakeCatalogAPI) ListProducts(ctx context.Context, q ports.ProductQuery) ([]model.Product, error) {
	return f.products, nil
}

func (f *fakeCatalogAPI) GetProduct(ctx context.Context, slug string) (model.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Product{}, apperrors.NotFound("product not found")
}

func (f *fakeCatalogAPI) ListPosts(ctx context.Context, page int) ([]model.Post, error) {
	return f.posts, nil
}

func (f *fakeCatalogAPI) GetPost(ctx context.Context, slug string) (model.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Post{}, apperrors.NotFound("post not found")
}

type fakeCartAPI struct {
	cart model.Cart
}

func (f *fakeCartAPI) GetCart(ctx context.Context) (model.Cart, error) { return f.cart, nil }

func (f *fakeCartAPI) AddItem(ctx context.Context, in ports.CartItemInput) (model.Cart, error) {
	f.cart.Items = append(f.cart.Items, model.CartItem{
		ID:        "item-1",
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	})
	return f.cart, nil
}

func (f *fakeCartAPI) RemoveItem(ctx context.Context, itemID string) (model.Cart, error) {
	kept := f.cart.Items[:0]
	for _, item := range f.cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	f.cart.Items = kept
	return f.cart, nil
}

type fakeAdminAPI struct {
	stats model.StoreStats
}

func (f *fakeAdminAPI) ListUsers(ctx context.Context) ([]model.Account, error) {
	return []model.Account{{ID: "u1", Name: "Ada"}}, nil
}

func (f *fakeAdminAPI) ListOrders(ctx context.Context) ([]model.Order, error) {
	return []model.Order{{ID: "o1", Status: "paid"}}, nil
}

func (f *fakeAdminAPI) GetSettings(ctx context.Context) (model.Settings, error) {
	return model.Settings{StoreName: "Lumen"}, nil
}

func (f *fakeAdminAPI) GetStats(ctx context.Context) (model.StoreStats, error) {
	return f.stats, nil
}

type fakeLeadAPI struct {
	last model.Lead
}

func (f *fakeLeadAPI) SubmitLead(ctx context.Context, lead model.Lead) (model.Lead, error) {
	f.last = lead
	return lead, nil
}

type testApp struct {
	handler http.Handler
	auth    *mockauth.MockAuthAPI
	store   *mockauth.MemoryCredentialStore
	leads   *fakeLeadAPI
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := discardLogger()

	auth := mockauth.NewMockAuthAPI()
	store := mockauth.NewMemoryCredentialStore()
	leads := &fakeLeadAPI{}

	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		API: &fakeCatalogAPI{
			products: []model.Product{{ID: "p1", Slug: "desk-lamp", Title: "Desk lamp"}},
			posts:    []model.Post{{ID: "b1", Slug: "hello", Title: "Hello"}},
		},
		Logger: logger,
	})

	admin := service.NewAdminService(service.AdminServiceOptions{
		API:    &fakeAdminAPI{stats: model.StoreStats{Products: 2}},
		Logger: logger,
	})

	router := NewRouter(RouterServices{
		Catalog: catalog,
		Cart:    &fakeCartAPI{cart: model.Cart{ID: "cart-1", Currency: "USD"}},
		Admin:   admin,
		Leads:   service.NewLeadService(service.LeadServiceOptions{API: leads, Logger: logger}),
		Logger:  logger,
	})

	return &testApp{
		handler: ResolveSession(staticFactory{store: store}, auth, logger)(router),
		auth:    auth,
		store:   store,
		leads:   leads,
	}
}

func (a *testApp) signIn() {
	a.store.Seed(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})
}

func (a *testApp) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_PublicCatalog(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody(t, rec)["products"].([]any)
	assert.Len(t, products, 1)

	rec = app.do(http.MethodGet, "/api/products/desk-lamp", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])

	rec = app.do(http.MethodGet, "/api/posts/hello", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CartRequiresSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	app.signIn()
	rec = app.do(http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody(t, rec)["cart"].(map[string]any)
	assert.Equal(t, "cart-1", cart["id"])
}

func TestRouter_AddCartItemValidation(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	rec := app.do(http.MethodPost, "/api/cart/items", `{"product_id":"p1","quantity":0}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, "quantity", body["field"])
}

func TestRouter_AddAndRemoveCartItem(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	rec := app.do(http.MethodPost, "/api/cart/items", `{"product_id":"p1","quantity":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodDelete, "/api/cart/items/item-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody(t, rec)["cart"].(map[string]any)
	assert.Empty(t, cart["items"])
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	app := newTestApp(t)

	// Anonymous: no session at all.
	rec := app.do(http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed in as customer: denied, not redirected.
	app.signIn()
	rec = app.do(http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "customer", decodeBody(t, rec)["role"])
}

func TestRouter_AdminDashboardForAdmin(t *testing.T) {
	app := newTestApp(t)
	app.auth.DefaultUser.Role = domainauth.RoleAdmin
	app.signIn()

	rec := app.do(http.MethodGet, "/api/admin/dashboard", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["products"])
}

func TestRouter_AuthStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])

	app.signIn()
	rec = app.do(http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "mock-user-1", user["id"])
}

func TestRouter_LoginPersistsCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"pw"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["authenticated"])
	creds, ok := app.store.Get()
	require.True(t, ok)
	assert.Equal(t, "mock-access", creds.AccessToken)
}

func TestRouter_LoginValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/login", `{"email":"","password":"pw"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeBody(t, rec)["field"])
}

func TestRouter_RegisterCreatesSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"pw"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Ada", user["name"])
	_, ok := app.store.Get()
	assert.True(t, ok)
}

func TestRouter_LogoutClearsCredentials(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	rec := app.do(http.MethodPost, "/api/auth/logout", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed_out", decodeBody(t, rec)["status"])
	_, ok := app.store.Get()
	assert.False(t, ok)
}

func TestRouter_LeadCaptureIsPublic(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/leads",
		`{"name":"Ada","contact":"ada@example.com","message":"hi","page":"/products/desk-lamp"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	lead := decodeBody(t, rec)["lead"].(map[string]any)
	assert.NotEmpty(t, lead["id"])
	assert.Equal(t, "/products/desk-lamp", app.leads.last.Page)
}

func TestRouter_LoginPageCarriesRedirect(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/auth/login?redirect_uri=%2Fcart", "", map[string]string{"Accept": "text/html"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="redirect_uri" value="/cart"`)
}

func TestRouter_LoginFormRedirectsOnSuccess(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/auth/login",
		"email=a%40example.com&password=pw&redirect_uri=%2Fcart",
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	_, ok := app.store.Get()
	assert.True(t, ok)
}

func TestRouter_LoginFormRejectionRerenders(t *testing.T) {
	app := newTestApp(t)
	app.auth.LoginFunc = func(ctx context.Context, email, password string) (domainauth.User, domainauth.Credentials, error) {
		return domainauth.User{}, domainauth.Credentials{}, apperrors.Unauthorized("invalid credentials")
	}

	rec := app.do(http.MethodPost, "/auth/login",
		"email=a%40example.com&password=wrong&redirect_uri=%2Fcart",
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign-in failed")
}

func TestRouter_GuardedPageRedirectsBrowser(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/account", "", map[string]string{"Accept": "text/html"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Faccount", rec.Header().Get("Location"))
}

func TestRouter_AccountPageShowsUser(t *testing.T) {
	app := newTestApp(t)
	app.signIn()

	rec := app.do(http.MethodGet, "/account", "", map[string]string{"Accept": "text/html"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account: Mock User")
}

func TestRouter_HomeAndNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/", "", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/no-such-page", "", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
