// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CatalogStoreConfig controls the Postgres connection pool used for
// catalog rows.
type CatalogStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// CatalogStore persists per-job restaurant catalogs as JSONB rows.
type CatalogStore struct {
	pool  pgxPool
	table string
}

// NewCatalogStore creates a Postgres-backed CatalogStore using the provided config.
func NewCatalogStore(ctx context.Context, cfg CatalogStoreConfig) (*CatalogStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "catalogs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &CatalogStore{
		pool:  pool,
		table: table,
	}, nil
}

// NewCatalogStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewCatalogStoreWithPool(pool pgxPool, table string) (*CatalogStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "catalogs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &CatalogStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *CatalogStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveCatalog upserts the catalog row for a job.
func (s *CatalogStore) SaveCatalog(ctx context.Context, jobID string, restaurants []menu.Restaurant) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("catalog store is not configured")
	}
	if jobID == "" {
		return fmt.Errorf("job id is required")
	}
	payload, err := json.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (job_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (job_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`, s.table)

	if _, err := s.pool.Exec(ctx, query, jobID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	return nil
}

// GetCatalog reads the catalog row for a job.
func (s *CatalogStore) GetCatalog(ctx context.Context, jobID string) ([]menu.Restaurant, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("catalog store is not configured")
	}
	if jobID == "" {
		return nil, fmt.Errorf("job id is required")
	}

	query := fmt.Sprintf(`SELECT payload FROM %s WHERE job_id = $1`, s.table)

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, jobID).Scan(&payload); err != nil {
		return nil, fmt.Errorf("select catalog: %w", err)
	}

	var restaurants []menu.Restaurant
	if err := json.Unmarshal(payload, &restaurants); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return restaurants, nil
}
