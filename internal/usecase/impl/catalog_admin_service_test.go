package impl

import (
	"context"
	"sync/atomic"
	"testing"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/service"
	"luxe/internal/infra/catalog"
	"luxe/internal/infra/persistence/memstore"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []entity.Product

func (s staticSource) Load(context.Context) ([]entity.Product, error) {
	return append([]entity.Product(nil), s...), nil
}

func newTestAdmin(store *memstore.Store, source service.CatalogSource, concurrency int) *catalogAdminService {
	cfg := testConfig()
	cfg.Catalog.SeedConcurrency = concurrency

	return NewCatalogAdminService(store, testLayout(), source, cfg, discardLogger()).(*catalogAdminService)
}

func TestCatalogAdminService_SeedInsertsEveryProduct(t *testing.T) {
	demo, err := catalog.NewEmbeddedSource().Load(context.Background())
	require.NoError(t, err)

	for _, concurrency := range []int{1, 4} {
		store := memstore.New()
		admin := newTestAdmin(store, catalog.NewEmbeddedSource(), concurrency)

		result, err := admin.Seed(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(demo), result.Inserted)

		docs, err := store.List(context.Background(), testLayout().Products())
		require.NoError(t, err)
		require.Len(t, docs, len(demo))

		ids := make(map[string]struct{}, len(docs))
		for _, doc := range docs {
			ids[doc.ID] = struct{}{}
			assert.NotNil(t, doc.Fields["createdAt"])
		}
		assert.Len(t, ids, len(demo), "ids must be distinct")
		assert.ElementsMatch(t, result.ProductIDs, keys(ids))
	}
}

func TestCatalogAdminService_SeedAddsToExistingCatalog(t *testing.T) {
	store := memstore.New()
	seedProduct(t, store, "Old Chair", 80, "Furniture")
	admin := newTestAdmin(store, staticSource{{Name: "Cup", Price: 3, Category: "Home"}}, 1)

	_, err := admin.Seed(context.Background())
	require.NoError(t, err)

	docs, err := store.List(context.Background(), testLayout().Products())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCatalogAdminService_ResetReplacesCatalog(t *testing.T) {
	store := memstore.New()
	old := map[string]struct{}{}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		old[seedProduct(t, store, name, 10, "Home").ID] = struct{}{}
	}

	source := staticSource{
		{Name: "Cup", Price: 3, Category: "Home"},
		{Name: "Lamp", Price: 30, Category: "Home"},
		{Name: "Scarf", Price: 20, Category: "Fashion"},
	}
	admin := newTestAdmin(store, source, 1)

	result, err := admin.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Deleted)
	assert.Equal(t, 3, result.Inserted)

	docs, err := store.List(context.Background(), testLayout().Products())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for _, doc := range docs {
		_, survived := old[doc.ID]
		assert.False(t, survived)
	}
}

func TestCatalogAdminService_SeedStopsOnFailure(t *testing.T) {
	store := memstore.New()
	boom := errors.New("quota exceeded")

	var creates atomic.Int32
	store.SetWriteHook(func(op memstore.Operation, _ string) error {
		if op == memstore.OpCreate && creates.Add(1) == 3 {
			return boom
		}

		return nil
	})

	source := staticSource{
		{Name: "A", Price: 1, Category: "Home"},
		{Name: "B", Price: 1, Category: "Home"},
		{Name: "C", Price: 1, Category: "Home"},
		{Name: "D", Price: 1, Category: "Home"},
	}
	admin := newTestAdmin(store, source, 1)

	result, err := admin.Seed(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrPartialBulkFailure)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Inserted)

	// Nothing is rolled back.
	docs, err := store.List(context.Background(), testLayout().Products())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCatalogAdminService_ResetDeleteFailure(t *testing.T) {
	store := memstore.New()
	seedProduct(t, store, "A", 1, "Home")
	boom := errors.New("permission denied")
	store.SetWriteHook(func(op memstore.Operation, _ string) error {
		if op == memstore.OpDelete {
			return boom
		}

		return nil
	})

	admin := newTestAdmin(store, staticSource{{Name: "Cup", Price: 3, Category: "Home"}}, 1)

	_, err := admin.Reset(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrPartialBulkFailure)

	docs, err := store.List(context.Background(), testLayout().Products())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestCatalogAdminService_InvalidDemoProduct(t *testing.T) {
	store := memstore.New()
	admin := newTestAdmin(store, staticSource{{Name: "Free", Price: 0, Category: "Home"}}, 1)

	_, err := admin.Seed(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	docs, err := store.List(context.Background(), testLayout().Products())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}
