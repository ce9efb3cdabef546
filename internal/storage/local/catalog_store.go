package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

// CatalogStore persists per-job restaurant catalogs as JSON files.
type CatalogStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewCatalogStore creates a filesystem-backed catalog store.
func NewCatalogStore(cfg Config) (*CatalogStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &CatalogStore{baseDir: cfg.BaseDir}, nil
}

// SaveCatalog writes the catalog for a job, replacing any previous file.
func (s *CatalogStore) SaveCatalog(_ context.Context, jobID string, restaurants []menu.Restaurant) error {
	path, err := s.catalogPath(jobID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(restaurants, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// GetCatalog reads the catalog for a job.
func (s *CatalogStore) GetCatalog(_ context.Context, jobID string) ([]menu.Restaurant, error) {
	path, err := s.catalogPath(jobID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// #nosec G304 -- path is constrained to the base directory above.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var restaurants []menu.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return restaurants, nil
}

func (s *CatalogStore) catalogPath(jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", fmt.Errorf("job id is required")
	}
	if strings.ContainsAny(jobID, "/\\") {
		return "", fmt.Errorf("invalid job id")
	}
	return filepath.Join(s.baseDir, fmt.Sprintf("catalog-%s.json", jobID)), nil
}
