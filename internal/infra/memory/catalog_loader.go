package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"songquiz-service/internal/domain"
)

// StaticCatalogLoader is a simple loader backed by an in-memory value (useful for tests/demos).
type StaticCatalogLoader struct {
	catalog domain.Catalog
}

func NewStaticCatalogLoader(catalog domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalog: catalog}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	return l.catalog, nil
}

// FileCatalogLoader reads a songs.json document from disk on every load.
type FileCatalogLoader struct {
	path string
}

func NewFileCatalogLoader(path string) *FileCatalogLoader {
	return &FileCatalogLoader{path: path}
}

func (l *FileCatalogLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	return ReadCatalogFile(l.path)
}

// ReadCatalogFile decodes a catalog document.
func ReadCatalogFile(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Catalog{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, path)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return catalog, nil
}

// WriteCatalogFile encodes a catalog document with indentation.
func WriteCatalogFile(path string, catalog domain.Catalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
