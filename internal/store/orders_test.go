package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stockpos/stockpos/internal/domain"
)

func TestCreateOrderRoundTrip(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "X", 10, 1.99)

	created, err := orders.Create(ctx, map[string]float64{"X": 2}, "note")
	require.NoError(t, err)

	view, err := orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "note", view.Description)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "X", view.Products[0].Barcode)
	assert.Equal(t, 2.0, view.Products[0].Amount)
	assert.Equal(t, 1.99, view.Products[0].Price)
	assert.Equal(t, "Kg", view.Products[0].Unit)

	assert.Equal(t, 8.0, productQuantity(t, db, "X"))
}

func TestCreateOrderUnknownBarcodeAborts(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 10, 1)

	_, err := orders.Create(ctx, map[string]float64{"A": 5, "ghost": 1}, "")
	assert.True(t, IsNotFound(err))

	assert.Equal(t, 10.0, productQuantity(t, db, "A"))
	var count int64
	db.Model(&domain.OrderItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateOrderAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 10, 1)
	seedProduct(t, db, "B", 3, 1)

	_, err := orders.Create(ctx, map[string]float64{"A": 5, "B": 1000000}, "")
	assert.True(t, IsInsufficientStock(err))

	// no partial stock mutation, no partial order creation
	assert.Equal(t, 10.0, productQuantity(t, db, "A"))
	assert.Equal(t, 3.0, productQuantity(t, db, "B"))
	var itemCount, orderCount int64
	db.Model(&domain.OrderItem{}).Count(&itemCount)
	db.Model(&domain.SalesOrder{}).Count(&orderCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, orderCount)
}

func TestCreateOrderInvalidAmount(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)

	seedProduct(t, db, "A", 10, 1)

	_, err := orders.Create(context.Background(), map[string]float64{"A": 0}, "")
	assert.True(t, IsInvalidAmount(err))

	_, err = orders.Create(context.Background(), map[string]float64{"A": -2}, "")
	assert.True(t, IsInvalidAmount(err))
}

func TestPriceSnapshotSurvivesProductPriceChange(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	seedProduct(t, db, "X", 10, 5.0)

	created, err := orders.Create(ctx, map[string]float64{"X": 1}, "")
	require.NoError(t, err)

	newPrice := 9.0
	_, err = catalog.UpdateByBarcode(ctx, "X", &ProductPatch{Price: &newPrice})
	require.NoError(t, err)

	view, err := orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, view.Products[0].Price)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "Y", 10, 1)

	created, err := orders.Create(ctx, map[string]float64{"Y": 4}, "")
	require.NoError(t, err)
	assert.Equal(t, 6.0, productQuantity(t, db, "Y"))

	require.NoError(t, orders.Delete(ctx, created.ID))
	assert.Equal(t, 10.0, productQuantity(t, db, "Y"))

	_, err = orders.Get(ctx, created.ID)
	assert.True(t, IsNotFound(err))
	var count int64
	db.Model(&domain.OrderItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteMissingOrderIsSilent(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	require.NoError(t, orders.Delete(context.Background(), 424242))
}

func TestStockConservationOverCreateDeletePairs(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "Z", 10, 1)

	for i := 0; i < 20; i++ {
		created, err := orders.Create(ctx, map[string]float64{"Z": 0.3}, "")
		require.NoError(t, err)
		require.NoError(t, orders.Delete(ctx, created.ID))
	}

	assert.InDelta(t, 10.0, productQuantity(t, db, "Z"), 1e-4)
}

func TestUpdateOrderReplacesItems(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 10, 1)
	seedProduct(t, db, "B", 10, 2)

	created, err := orders.Create(ctx, map[string]float64{"A": 4}, "first")
	require.NoError(t, err)

	view, err := orders.Update(ctx, created.ID, map[string]float64{"B": 3}, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", view.Description)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "B", view.Products[0].Barcode)
	assert.Equal(t, 3.0, view.Products[0].Amount)

	// A restored, B debited
	assert.Equal(t, 10.0, productQuantity(t, db, "A"))
	assert.Equal(t, 7.0, productQuantity(t, db, "B"))
}

func TestUpdateOrderKeepsDescriptionWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 10, 1)

	created, err := orders.Create(ctx, map[string]float64{"A": 1}, "keep me")
	require.NoError(t, err)

	view, err := orders.Update(ctx, created.ID, map[string]float64{"A": 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "keep me", view.Description)
}

func TestUpdateOrderUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	seedProduct(t, db, "A", 10, 1)

	_, err := orders.Update(context.Background(), 999, map[string]float64{"A": 1}, "")
	assert.True(t, IsNotFound(err))
	// nothing touched
	assert.Equal(t, 10.0, productQuantity(t, db, "A"))
}

// The restore phase commits before the new item set is validated. A failed
// validation therefore leaves the order with no items and the pre-order
// stock restored. This mirrors the shipped behavior on purpose.
func TestUpdateOrderValidationFailureLeavesOrderEmpty(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 10, 1)

	created, err := orders.Create(ctx, map[string]float64{"A": 4}, "gap")
	require.NoError(t, err)
	assert.Equal(t, 6.0, productQuantity(t, db, "A"))

	_, err = orders.Update(ctx, created.ID, map[string]float64{"A": 50}, "")
	assert.True(t, IsInsufficientStock(err))

	// old items gone, stock restored, order still present but empty
	assert.Equal(t, 10.0, productQuantity(t, db, "A"))
	view, err := orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Products)
	assert.Equal(t, "gap", view.Description)
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 100, 1)

	for i := 0; i < 3; i++ {
		_, err := orders.Create(ctx, map[string]float64{"A": 1}, "")
		require.NoError(t, err)
	}

	views, err := orders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestListOrdersInTimeRange(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 100, 1)

	stamps := []int64{100, 200, 300}
	ids := make([]int64, 0, len(stamps))
	for range stamps {
		created, err := orders.Create(ctx, map[string]float64{"A": 1}, "")
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	for i, ts := range stamps {
		require.NoError(t, db.Model(&domain.SalesOrder{}).Where("id = ?", ids[i]).
			Update("created_at", time.Unix(ts, 0)).Error)
	}

	start := time.Unix(150, 0)
	end := time.Unix(250, 0)

	views, err := orders.ListRange(ctx, &start, &end)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ids[1], views[0].ID)

	// bounds are inclusive
	start = time.Unix(200, 0)
	views, err = orders.ListRange(ctx, &start, &start)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ids[1], views[0].ID)

	// one-sided bounds
	start = time.Unix(250, 0)
	views, err = orders.ListRange(ctx, &start, nil)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	end = time.Unix(250, 0)
	views, err = orders.ListRange(ctx, nil, &end)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	// no bounds means all orders
	views, err = orders.ListRange(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestDebitRoundingThroughService(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "A", 1, 1)

	_, err := orders.Create(ctx, map[string]float64{"A": 0.3}, "")
	require.NoError(t, err)
	assert.Equal(t, 0.7, productQuantity(t, db, "A"))
}

func TestDeleteProductReferencedByOrderRefused(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	catalog := NewGormProductStore(db)
	ctx := context.Background()

	seedProduct(t, db, "X", 10, 1.5)

	created, err := orders.Create(ctx, map[string]float64{"X": 2}, "")
	require.NoError(t, err)

	err = catalog.DeleteByBarcode(ctx, "X")
	assert.True(t, IsProductInUse(err))

	// the order still renders its product
	view, err := orders.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "X", view.Products[0].Barcode)

	// once the order is gone the delete goes through
	require.NoError(t, orders.Delete(ctx, created.ID))
	require.NoError(t, catalog.DeleteByBarcode(ctx, "X"))
}

func TestRowLockAppliedPerDialect(t *testing.T) {
	pg, err := gorm.Open(postgres.Open("host=localhost user=stockpos dbname=stockpos"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	var product domain.Product
	sql := rowLock(pg).Where("barcode = ?", "X").Find(&product).Statement.SQL.String()
	assert.Contains(t, sql, "FOR UPDATE")

	lite := newTestDB(t)
	sql = rowLock(lite.Session(&gorm.Session{DryRun: true})).Where("barcode = ?", "X").Find(&product).Statement.SQL.String()
	assert.NotContains(t, sql, "FOR UPDATE")
}

func TestConcurrentCreatorsNeverOversell(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil)
	ctx := context.Background()

	seedProduct(t, db, "X", 10, 1)

	// racing creators may fail on contention; the invariant is that the
	// committed debits never exceed the starting quantity
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = orders.Create(ctx, map[string]float64{"X": 3}, "")
		}()
	}
	wg.Wait()

	var total float64
	require.NoError(t, db.Model(&domain.OrderItem{}).
		Select("coalesce(sum(amount), 0)").Scan(&total).Error)
	assert.LessOrEqual(t, total, 10.0)
	assert.GreaterOrEqual(t, productQuantity(t, db, "X"), 0.0)
	assert.InDelta(t, 10.0, productQuantity(t, db, "X")+total, 1e-4)
}

func TestStockEventsPublishedAfterCommit(t *testing.T) {
	db := newTestDB(t)
	bus := EventBus.New()
	orders := NewOrderService(db, bus)
	ctx := context.Background()

	type observed struct {
		barcode   string
		quantity  float64
		committed float64
	}
	var got []observed
	require.NoError(t, bus.Subscribe(TopicStockChanged, func(barcode string, quantity float64) {
		// reading through a fresh query proves the level was committed
		// before the event went out
		got = append(got, observed{barcode, quantity, productQuantity(t, db, barcode)})
	}))

	seedProduct(t, db, "X", 10, 1)

	created, err := orders.Create(ctx, map[string]float64{"X": 2}, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].barcode)
	assert.Equal(t, 8.0, got[0].quantity)
	assert.Equal(t, got[0].quantity, got[0].committed)

	// a rejected create emits nothing
	_, err = orders.Create(ctx, map[string]float64{"X": 50}, "")
	assert.True(t, IsInsufficientStock(err))
	assert.Len(t, got, 1)

	require.NoError(t, orders.Delete(ctx, created.ID))
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[1].quantity)
	assert.Equal(t, got[1].quantity, got[1].committed)
}
