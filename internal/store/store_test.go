package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stockpos/stockpos/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, barcode string, quantity, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{
		Name:     "product " + barcode,
		Barcode:  barcode,
		Quantity: quantity,
		Unit:     "Kg",
		Price:    price,
	}
	require.NoError(t, NewGormProductStore(db).Insert(context.Background(), product))
	return product
}

func productQuantity(t *testing.T, db *gorm.DB, barcode string) float64 {
	t.Helper()
	product, err := NewGormProductStore(db).GetByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	return product.Quantity
}
