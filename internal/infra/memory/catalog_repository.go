package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"songquiz-service/internal/domain"
)

// CatalogLoader fetches the catalog from a backing store (file, Postgres, etc).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

const catalogFlightKey = "catalog"

// CatalogRepository caches the catalog with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	catalog   *domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.cached(r.clock()); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogFlightKey, func() (interface{}, error) {
		now := r.clock()
		if catalog, ok := r.cached(now); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		r.mu.Lock()
		r.catalog = &catalog
		r.expiresAt = now.Add(TTLWithJitter(r.ttl))
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (r *CatalogRepository) Invalidate() {
	r.mu.Lock()
	r.catalog = nil
	r.mu.Unlock()
}

func (r *CatalogRepository) cached(now time.Time) (domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog != nil && (r.ttl <= 0 || r.expiresAt.After(now)) {
		return *r.catalog, true
	}
	return domain.Catalog{}, false
}

// TTLWithJitter adds up to 10% jitter to spread expirations. A non-positive ttl means no expiry.
func TTLWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int64N(jitterMax+1))
}
