package catalogsource

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/logger"
	lru "github.com/hashicorp/golang-lru"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/lockmap"
)

// Cached is a Source which keeps parsed catalogs, keyed by the stamp of the
// backing source (for a file: path, modification time and size).
//
// Only successfully parsed catalogs are cached, and a catalog is used only
// while the stamp is unchanged. Thus if the backing file becomes malformed,
// Load fails instead of returning the last good catalog.
type Cached struct {
	Backend Source

	stamper   Stamper
	cache     *lru.Cache
	parseLock *lockmap.LockMap[string]
}

var _ Source = (*Cached)(nil)

// NewCached wraps a Source with a cache of the given size.
//
// Returns an error if the backend does not implement Stamper.
func NewCached(backend Source, size int) (*Cached, error) {
	stamper, ok := backend.(Stamper)
	if !ok {
		return nil, fmt.Errorf("catalog source '%s' does not support caching", backend)
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the catalog cache: %w", err)
	}
	return &Cached{
		Backend:   backend,
		stamper:   stamper,
		cache:     cache,
		parseLock: lockmap.New[string](),
	}, nil
}

// Load implements Source.
func (c *Cached) Load(ctx context.Context) (*catalog.Catalog, error) {
	stamp, err := c.stamper.Stamp(ctx)
	if err != nil {
		return nil, err
	}

	if result := c.get(ctx, stamp); result != nil {
		return result, nil
	}

	// concurrent requests for the same stamp wait for a single parse
	l := c.parseLock.Lock(stamp)
	defer l.Unlock()
	if result := c.get(ctx, stamp); result != nil {
		return result, nil
	}

	result, err := c.Backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	// the source may have been rewritten while it was being loaded
	stampAfter, err := c.stamper.Stamp(ctx)
	if err != nil {
		return nil, err
	}
	if stampAfter != stamp {
		logger.FromCtx(ctx).Debugf("catalog changed while loading ('%s' -> '%s'), not caching", stamp, stampAfter)
		return result, nil
	}

	logger.FromCtx(ctx).Debugf("caching catalog with stamp '%s'", stamp)
	c.cache.Add(stamp, result)
	return result, nil
}

func (c *Cached) get(ctx context.Context, stamp string) *catalog.Catalog {
	obj, ok := c.cache.Get(stamp)
	if !ok {
		return nil
	}
	metrics.FromCtx(ctx).Count("catalogCacheHits").Add(1)
	return obj.(*catalog.Catalog)
}

// Purge drops all cached catalogs.
func (c *Cached) Purge() {
	c.cache.Purge()
}

// String implements Source.
func (c *Cached) String() string {
	return c.Backend.String()
}

// Close implements io.Closer.
func (c *Cached) Close() error {
	c.Purge()
	return c.Backend.Close()
}
