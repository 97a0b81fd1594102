package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/lumenshop/storefront/config"
	"github.com/lumenshop/storefront/internal/adapters/cookiecreds"
	"github.com/lumenshop/storefront/internal/adapters/memcreds"
	"github.com/lumenshop/storefront/internal/adapters/rediscache"
	"github.com/lumenshop/storefront/internal/adapters/rediscreds"
	"github.com/lumenshop/storefront/internal/adapters/webhook"
	"github.com/lumenshop/storefront/internal/backend"
	httpx "github.com/lumenshop/storefront/internal/http"
	"github.com/lumenshop/storefront/internal/ports"
	"github.com/lumenshop/storefront/internal/service"
)

// ServiceContainer holds everything the HTTP layer needs, built once at
// startup.
type ServiceContainer struct {
	Backend     *backend.Client
	Auth        ports.AuthAPI
	Cart        ports.CartAPI
	Catalog     *service.CatalogService
	Admin       *service.AdminService
	Leads       *service.LeadService
	CredFactory httpx.CredentialStoreFactory
}

// ServiceSetup contains dependencies for BuildServices.
type ServiceSetup struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires the backend client, credential storage, and the
// domain services.
func BuildServices(setup ServiceSetup) (*ServiceContainer, error) {
	cfg := setup.Config
	logger := setup.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Logger:     logger,
		OnSessionExpired: func(ctx context.Context) {
			// Cookies are already cleared; the next guarded request
			// redirects to the login page.
			logger.InfoContext(ctx, "session expired, credentials cleared")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}

	credFactory, err := buildCredentialFactory(cfg, setup.RedisClient)
	if err != nil {
		return nil, err
	}

	store := backend.NewStoreClient(client)

	var cache ports.ContentCache
	if cfg.Cache.Enabled {
		if setup.RedisClient == nil {
			return nil, fmt.Errorf("content cache enabled but no redis client provided")
		}
		cache = rediscache.New(setup.RedisClient, "content:")
	}

	sink, err := buildLeadSink(cfg.Leads, logger)
	if err != nil {
		return nil, err
	}

	return &ServiceContainer{
		Backend:     client,
		Auth:        backend.NewAuthClient(client),
		Cart:        store,
		CredFactory: credFactory,
		Catalog: service.NewCatalogService(service.CatalogServiceOptions{
			API:    store,
			Cache:  cache,
			TTL:    cfg.Cache.ContentTTL,
			Logger: logger,
		}),
		Admin: service.NewAdminService(service.AdminServiceOptions{
			API:    store,
			Logger: logger,
		}),
		Leads: service.NewLeadService(service.LeadServiceOptions{
			API:    store,
			Sink:   sink,
			Logger: logger,
		}),
	}, nil
}

//nolint:ireturn // the factory interface hides which store backs sessions.
func buildCredentialFactory(cfg *config.AppConfig, client redis.UniversalClient) (httpx.CredentialStoreFactory, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, fmt.Errorf("session store %q requires a redis client", cfg.Session.Store)
		}
		factory, err := rediscreds.NewFactory(client, rediscreds.Config{
			TTL:    cfg.Session.TTL,
			Domain: cfg.Session.CookieDomain,
		})
		if err != nil {
			return nil, fmt.Errorf("build redis credential store: %w", err)
		}
		return factory, nil
	case config.SessionStoreCookie:
		factory, err := cookiecreds.NewFactory(cookiecreds.Config{
			Domain: cfg.Session.CookieDomain,
			MaxAge: cfg.Session.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("build cookie credential store: %w", err)
		}
		return factory, nil
	case config.SessionStoreMemory:
		if !cfg.IsDev {
			return nil, fmt.Errorf("session store %q is only available in dev mode", cfg.Session.Store)
		}
		return memcreds.NewFactory(), nil
	default:
		return nil, fmt.Errorf("unknown session store mode: %q", cfg.Session.Store)
	}
}

//nolint:ireturn // nil sink means leads only go to the backend.
func buildLeadSink(cfg config.LeadsConfig, logger *slog.Logger) (ports.LeadSink, error) {
	if cfg.WebhookURL == "" {
		return nil, nil
	}
	sink, err := webhook.New(webhook.Config{
		URL:     cfg.WebhookURL,
		Fields:  cfg.WebhookFields,
		Timeout: cfg.WebhookTimeout,
	}, webhook.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("build lead webhook sink: %w", err)
	}
	return sink, nil
}
