package cli

import (
	"context"
	"fmt"

	"github.com/areebaatariq/turnstyle-platform-sub001/internal/store"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/cache"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite/bgremoval"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/imageref"
)

// newStore builds the persistence backend from config.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.Config.Store.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      c.Config.Store.MongoURI,
			Database: c.Config.Store.MongoDatabase,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}

// sharedCache prefers Redis when configured, falling back to the file cache.
func (c *CLI) sharedCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := c.Config.Redis.Addr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
		}
		return rc, nil
	}
	return newCache(false)
}

// newRemover builds the configured background remover, wrapped in the cache.
func (c *CLI) newRemover(imgCache cache.Cache) bgremoval.Remover {
	cfg := c.Config.Composite
	var remover bgremoval.Remover
	switch cfg.BGRemoval {
	case "chroma":
		remover = bgremoval.NewChromaRemover(cfg.BGRemovalTolerance)
	case "api":
		remover = bgremoval.NewAPIRemover(cfg.BGRemovalEndpoint, nil)
	default:
		return bgremoval.NewNullRemover()
	}
	return bgremoval.NewCachedRemover(remover, imgCache, cfg.BGRemovalTolerance)
}

// cacheKeyer namespaces keys per user when the cache is shared through
// Redis. The file cache is local to one user and stays unscoped.
func (c *CLI) cacheKeyer() cache.Keyer {
	if c.Config.Redis.Addr != "" && c.Config.UserID != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:"+c.Config.UserID+":")
	}
	return cache.NewDefaultKeyer()
}

// newGenerator wires the resolver, remover, and composite cache into a
// generator.
func (c *CLI) newGenerator(imgCache cache.Cache) *composite.Generator {
	keyer := c.cacheKeyer()
	resolver := imageref.NewHTTPResolver(imgCache, c.Logger)
	resolver.Keyer = keyer
	return composite.NewGenerator(resolver, composite.Options{
		Width:   c.Config.Composite.Width,
		Height:  c.Config.Composite.Height,
		Remover: c.newRemover(imgCache),
		Cache:   imgCache,
		Keyer:   keyer,
		Logger:  c.Logger,
	})
}
