package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"songquiz-service/internal/domain"
	"songquiz-service/internal/infra/memory"
)

// CatalogRepository caches the catalog document in Redis and falls back to a loader on cache miss.
// The document is stored as: SET catalog:{name} {json} EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	name   string
	ttl    time.Duration
	sf     singleflight.Group
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		name:   "default",
		ttl:    ttl,
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(r.name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		data, err := json.Marshal(catalog)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := r.client.Set(ctx, r.key(), data, memory.TTLWithJitter(r.ttl)).Err(); err != nil {
			log.Printf("catalog cache write failed: %v", err)
		}
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate removes the cached document.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

func (r *CatalogRepository) cached(ctx context.Context) (domain.Catalog, bool) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Printf("catalog cache corrupt, reloading: %v", err)
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) key() string {
	return "catalog:" + r.name
}
