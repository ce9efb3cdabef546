package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willzeng274/HaystackDiet/internal/storage/local"
)

func TestNewBlobStoreBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, closer, err := NewBlobStore(ctx, Config{BlobBackend: BackendNone})
	require.NoError(t, err)
	require.Nil(t, store)
	closer()

	store, closer, err = NewBlobStore(ctx, Config{BlobBackend: BackendMemory})
	require.NoError(t, err)
	require.NotNil(t, store)
	closer()

	store, closer, err = NewBlobStore(ctx, Config{
		BlobBackend: BackendLocal,
		Local:       local.Config{BaseDir: t.TempDir()},
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	closer()

	_, _, err = NewBlobStore(ctx, Config{BlobBackend: "s3"})
	require.Error(t, err)
}

func TestNewCatalogStoreBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, closer, err := NewCatalogStore(ctx, Config{CatalogBackend: BackendMemory})
	require.NoError(t, err)
	require.NotNil(t, store)
	closer()

	store, closer, err = NewCatalogStore(ctx, Config{
		CatalogBackend: BackendLocal,
		Local:          local.Config{BaseDir: t.TempDir()},
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	closer()

	_, _, err = NewCatalogStore(ctx, Config{CatalogBackend: BackendPostgres})
	require.Error(t, err)

	_, _, err = NewCatalogStore(ctx, Config{CatalogBackend: "dynamo"})
	require.Error(t, err)
}
