package out

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	tblogout "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/out"
)

// CachedCatalogLoader shares loaded catalogs between sessions of the same
// deployment. Cached deployments are handed out read-only.
type CachedCatalogLoader struct {
	next  tblogout.CatalogLoader
	cache *cache.Cache
}

func NewCachedCatalogLoader(next tblogout.CatalogLoader, ttl time.Duration) *CachedCatalogLoader {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &CachedCatalogLoader{next: next, cache: cache.New(ttl, 10*time.Minute)}
}

func (c *CachedCatalogLoader) Load(ctx context.Context, bundleDir, deployment string) (*domain.Deployment, error) {
	if deployment != "" {
		if hit, ok := c.cache.Get(deployment); ok {
			return hit.(*domain.Deployment), nil
		}
	}
	loaded, err := c.next.Load(ctx, bundleDir, deployment)
	if err != nil {
		return nil, err
	}
	if loaded.Name != "" {
		c.cache.SetDefault(loaded.Name, loaded)
	}
	if deployment != "" && deployment != loaded.Name {
		c.cache.SetDefault(deployment, loaded)
	}
	return loaded, nil
}

func (c *CachedCatalogLoader) Len() int {
	return c.cache.ItemCount()
}
