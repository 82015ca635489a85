package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpos/stockpos/internal/domain"
)

func TestProductInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	seedProduct(t, db, "7891000100103", 25, 3.5)

	product, err := catalog.GetByBarcode(ctx, "7891000100103")
	require.NoError(t, err)
	assert.Equal(t, 25.0, product.Quantity)
	assert.Equal(t, 3.5, product.Price)
	assert.False(t, product.CreatedAt.IsZero())

	_, err = catalog.GetByBarcode(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestProductInsertDuplicateBarcode(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)

	seedProduct(t, db, "111", 1, 1)
	err := catalog.Insert(context.Background(), &domain.Product{Name: "other", Barcode: "111"})
	assert.True(t, IsDuplicateBarcode(err))
}

func TestProductPartialUpdateMergesFields(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	seedProduct(t, db, "222", 10, 2.0)

	patch, err := DecodeProductPatch(map[string]interface{}{
		"price": 2.75,
		"name":  "renamed",
	})
	require.NoError(t, err)

	updated, err := catalog.UpdateByBarcode(ctx, "222", patch)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, 2.75, updated.Price)
	// unspecified fields keep their previous values
	assert.Equal(t, 10.0, updated.Quantity)
	assert.Equal(t, "Kg", updated.Unit)

	_, err = catalog.UpdateByBarcode(ctx, "missing", patch)
	assert.True(t, IsNotFound(err))
}

func TestProductUpdateBarcodeCollision(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)

	seedProduct(t, db, "333", 1, 1)
	seedProduct(t, db, "444", 1, 1)

	barcode := "333"
	_, err := catalog.UpdateByBarcode(context.Background(), "444", &ProductPatch{Barcode: &barcode})
	assert.True(t, IsDuplicateBarcode(err))
}

func TestProductDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	seedProduct(t, db, "555", 1, 1)
	require.NoError(t, catalog.DeleteByBarcode(ctx, "555"))
	require.NoError(t, catalog.DeleteByBarcode(ctx, "555"))
	require.NoError(t, catalog.DeleteByBarcode(ctx, "never-existed"))
}

func TestProductListWithLimit(t *testing.T) {
	db := newTestDB(t)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	for _, barcode := range []string{"a", "b", "c"} {
		seedProduct(t, db, barcode, 1, 1)
	}

	all, err := catalog.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Barcode)

	two, err := catalog.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
