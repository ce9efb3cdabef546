package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

// CatalogStore keeps per-job restaurant catalogs in memory.
type CatalogStore struct {
	mu       sync.RWMutex
	catalogs map[string][]menu.Restaurant
}

// NewCatalogStore constructs a CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		catalogs: make(map[string][]menu.Restaurant),
	}
}

// SaveCatalog stores the deduplicated catalog for a job, replacing any
// previous catalog for the same job.
func (s *CatalogStore) SaveCatalog(_ context.Context, jobID string, restaurants []menu.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]menu.Restaurant, len(restaurants))
	copy(copied, restaurants)
	s.catalogs[jobID] = copied
	return nil
}

// GetCatalog returns the stored catalog for a job.
func (s *CatalogStore) GetCatalog(_ context.Context, jobID string) ([]menu.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	catalog, ok := s.catalogs[jobID]
	if !ok {
		return nil, errors.New("catalog not found")
	}
	out := make([]menu.Restaurant, len(catalog))
	copy(out, catalog)
	return out, nil
}
