// Package storage selects concrete store implementations from configuration.
// The service can run fully in-process (memory), on a single node (local
// files), or against managed backends (GCS blobs, Postgres catalogs).
package storage

import (
	"context"
	"fmt"

	gcstorage "cloud.google.com/go/storage"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/storage/gcs"
	"github.com/willzeng274/HaystackDiet/internal/storage/local"
	"github.com/willzeng274/HaystackDiet/internal/storage/memory"
	"github.com/willzeng274/HaystackDiet/internal/storage/postgres"
)

// Backend names accepted in configuration.
const (
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Config selects and parameterizes the storage backends.
type Config struct {
	BlobBackend    string                      `mapstructure:"blob_backend"`
	CatalogBackend string                      `mapstructure:"catalog_backend"`
	Local          local.Config                `mapstructure:"local"`
	GCSBucket      string                      `mapstructure:"gcs_bucket"`
	Postgres       postgres.CatalogStoreConfig `mapstructure:"-"`
	PostgresDSN    string                      `mapstructure:"postgres_dsn"`
	PostgresTable  string                      `mapstructure:"postgres_table"`
}

// NewBlobStore builds the configured blob store. The returned closer is
// never nil. A "none" backend returns a nil store; callers treat that as
// snapshots disabled.
func NewBlobStore(ctx context.Context, cfg Config) (menu.BlobStore, func(), error) {
	switch cfg.BlobBackend {
	case BackendNone, "":
		return nil, func() {}, nil
	case BackendMemory:
		return memory.NewBlobStore(), func() {}, nil
	case BackendLocal:
		store, err := local.New(cfg.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("local blob store: %w", err)
		}
		return store, func() {}, nil
	case BackendGCS:
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		if _, err := client.Bucket(cfg.GCSBucket).Attrs(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("check gcs bucket %q: %w", cfg.GCSBucket, err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("gcs blob store: %w", err)
		}
		return store, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// NewCatalogStore builds the configured catalog store.
func NewCatalogStore(ctx context.Context, cfg Config) (menu.CatalogStore, func(), error) {
	switch cfg.CatalogBackend {
	case BackendMemory, "":
		return memory.NewCatalogStore(), func() {}, nil
	case BackendLocal:
		store, err := local.NewCatalogStore(cfg.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("local catalog store: %w", err)
		}
		return store, func() {}, nil
	case BackendPostgres:
		pgCfg := cfg.Postgres
		if pgCfg.DSN == "" {
			pgCfg.DSN = cfg.PostgresDSN
		}
		if pgCfg.Table == "" {
			pgCfg.Table = cfg.PostgresTable
		}
		store, err := postgres.NewCatalogStore(ctx, pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres catalog store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}
}
