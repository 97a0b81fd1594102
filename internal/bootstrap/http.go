package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lumenshop/storefront/config"
	httpx "github.com/lumenshop/storefront/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil || cfg.Services == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: cfg.Services,
	})

	return startServer(logger, handler, appCfg.HTTP)
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services *ServiceContainer
}

// buildHTTPHandler assembles the middleware chain around the router.
// Order: Recover -> Logging -> RequestID -> ResolveSession -> Router.
// ResolveSession sits innermost so every route, guarded or not, can
// reach its session controller and credential store.
func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Catalog: cfg.Services.Catalog,
		Cart:    cfg.Services.Cart,
		Admin:   cfg.Services.Admin,
		Leads:   cfg.Services.Leads,
		Logger:  cfg.Logger,
	})

	h := httpx.ResolveSession(cfg.Services.CredFactory, cfg.Services.Auth, cfg.Logger)(router)
	h = httpx.RequestID()(h)
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, httpCfg config.HTTPConfig) *http.Server {
	addr := httpCfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(cfg.Context, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
