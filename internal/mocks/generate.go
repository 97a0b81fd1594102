// Package mocks provides mock implementations for testing the storefront gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// port interfaces. The mocks are generated using go:generate directives and provide
// a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockCatalog := mocks.NewMockCatalogAPI(ctrl)
//	mockCatalog.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(products, nil)
package mocks

// Generate mock for AuthAPI interface from internal/ports package.
// This creates MockAuthAPI with methods: Login, Register, Me, Logout.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_api_mock.go github.com/lumenshop/storefront/internal/ports AuthAPI

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods: Get, Set, Clear.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_store_mock.go github.com/lumenshop/storefront/internal/ports CredentialStore

// Generate mock for CatalogAPI interface from internal/ports package.
// This creates MockCatalogAPI with methods: ListProducts, GetProduct, ListPosts, GetPost.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=catalog_api_mock.go github.com/lumenshop/storefront/internal/ports CatalogAPI

// Generate mock for CartAPI interface from internal/ports package.
// This creates MockCartAPI with methods: GetCart, AddItem, RemoveItem.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cart_api_mock.go github.com/lumenshop/storefront/internal/ports CartAPI

// Generate mock for AdminAPI interface from internal/ports package.
// This creates MockAdminAPI with methods: ListUsers, ListOrders, GetSettings, GetStats.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=admin_api_mock.go github.com/lumenshop/storefront/internal/ports AdminAPI

// Generate mock for LeadAPI interface from internal/ports package.
// This creates MockLeadAPI with methods: SubmitLead.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=lead_api_mock.go github.com/lumenshop/storefront/internal/ports LeadAPI

// Generate mock for LeadSink interface from internal/ports package.
// This creates MockLeadSink with methods: Deliver.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=lead_sink_mock.go github.com/lumenshop/storefront/internal/ports LeadSink

// Generate mock for ContentCache interface from internal/ports package.
// This creates MockContentCache with methods: Get, Set, Delete.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=content_cache_mock.go github.com/lumenshop/storefront/internal/ports ContentCache
