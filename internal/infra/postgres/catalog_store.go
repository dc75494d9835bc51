package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"songquiz-service/internal/domain"
)

// DefaultCatalogID names the catalog row served by the quiz.
const DefaultCatalogID = "default"

// CatalogStore keeps catalog documents as JSONB in Postgres.
type CatalogStore struct {
	pool *pgxpool.Pool
	id   string
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool, id: DefaultCatalogID}
}

func (s *CatalogStore) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, s.id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, s.id)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return catalog, nil
}

// SaveCatalog replaces the stored document.
func (s *CatalogStore) SaveCatalog(ctx context.Context, catalog domain.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO catalogs (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`, s.id, string(data))
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
