package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lumenshop/storefront/internal/domain/model"
	"github.com/lumenshop/storefront/internal/ports"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	API    ports.CatalogAPI
	Cache  ports.ContentCache
	TTL    time.Duration
	Logger *slog.Logger
}

// CatalogService serves catalog and blog content with a read-through
// cache. Cache failures are logged and bypassed; the backend remains
// the source of truth.
type CatalogService struct {
	api    ports.CatalogAPI
	cache  ports.ContentCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCatalogService constructs a new CatalogService. Cache may be nil,
// which disables caching entirely.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{api: opts.API, cache: opts.Cache, ttl: ttl, logger: logger}
}

// ListProducts returns a catalog page, cached per query.
func (c *CatalogService) ListProducts(ctx context.Context, q ports.ProductQuery) ([]model.Product, error) {
	key := "products:" + q.Search + ":" + strconv.Itoa(q.Page) + ":" + strconv.Itoa(q.Limit)
	var products []model.Product
	err := c.readThrough(ctx, key, &products, func() (any, error) {
		return c.api.ListProducts(ctx, q)
	})
	return products, err
}

// GetProduct returns one product by slug, cached.
func (c *CatalogService) GetProduct(ctx context.Context, slug string) (model.Product, error) {
	var product model.Product
	err := c.readThrough(ctx, "product:"+slug, &product, func() (any, error) {
		return c.api.GetProduct(ctx, slug)
	})
	return product, err
}

// ListPosts returns a blog page, cached.
func (c *CatalogService) ListPosts(ctx context.Context, page int) ([]model.Post, error) {
	var posts []model.Post
	err := c.readThrough(ctx, "posts:"+strconv.Itoa(page), &posts, func() (any, error) {
		return c.api.ListPosts(ctx, page)
	})
	return posts, err
}

// GetPost returns one post by slug, cached.
func (c *CatalogService) GetPost(ctx context.Context, slug string) (model.Post, error) {
	var post model.Post
	err := c.readThrough(ctx, "post:"+slug, &post, func() (any, error) {
		return c.api.GetPost(ctx, slug)
	})
	return post, err
}

// readThrough fills dst from cache when possible, otherwise from fetch,
// repopulating the cache on the way out.
func (c *CatalogService) readThrough(ctx context.Context, key string, dst any, fetch func() (any, error)) error {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "content cache read failed", "key", key, "error", err)
		} else if cached != nil {
			if unmarshalErr := json.Unmarshal(cached, dst); unmarshalErr == nil {
				return nil
			}
			// A corrupt entry is dropped and refetched.
			if _, delErr := c.cache.Delete(ctx, key); delErr != nil {
				c.logger.WarnContext(ctx, "content cache cleanup failed", "key", key, "error", delErr)
			}
		}
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode content for cache: %w", err)
	}
	if unmarshalErr := json.Unmarshal(data, dst); unmarshalErr != nil {
		return fmt.Errorf("decode content: %w", unmarshalErr)
	}

	if c.cache != nil {
		if setErr := c.cache.Set(ctx, key, data, c.ttl); setErr != nil {
			c.logger.WarnContext(ctx, "content cache write failed", "key", key, "error", setErr)
		}
	}
	return nil
}
