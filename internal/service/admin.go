package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lumenshop/storefront/internal/domain/model"
	"github.com/lumenshop/storefront/internal/ports"
)

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	API    ports.AdminAPI
	Logger *slog.Logger
}

// AdminService backs the admin dashboard and its CRUD tables. The tables
// themselves are thin relays; the dashboard aggregates several backend
// reads concurrently.
type AdminService struct {
	api    ports.AdminAPI
	logger *slog.Logger
}

// NewAdminService constructs a new AdminService.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{api: opts.API, logger: logger}
}

// DashboardView is the aggregate the admin landing page renders.
type DashboardView struct {
	Stats  model.StoreStats `json:"stats"`
	Orders []model.Order    `json:"orders"`
	Users  []model.Account  `json:"users"`
}

// Dashboard fetches stats, recent orders, and recent users concurrently.
// One failing fetch fails the view; the dashboard has no meaningful
// partial rendering.
func (a *AdminService) Dashboard(ctx context.Context) (*DashboardView, error) {
	g, gctx := errgroup.WithContext(ctx)
	view := &DashboardView{}

	g.Go(func() error {
		stats, err := a.api.GetStats(gctx)
		if err != nil {
			return err
		}
		view.Stats = stats
		return nil
	})

	g.Go(func() error {
		orders, err := a.api.ListOrders(gctx)
		if err != nil {
			return err
		}
		view.Orders = orders
		return nil
	})

	g.Go(func() error {
		users, err := a.api.ListUsers(gctx)
		if err != nil {
			return err
		}
		view.Users = users
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// ListUsers relays the admin user table.
func (a *AdminService) ListUsers(ctx context.Context) ([]model.Account, error) {
	return a.api.ListUsers(ctx)
}

// ListOrders relays the admin order table.
func (a *AdminService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return a.api.ListOrders(ctx)
}

// GetSettings relays the store settings blob.
func (a *AdminService) GetSettings(ctx context.Context) (model.Settings, error) {
	return a.api.GetSettings(ctx)
}
