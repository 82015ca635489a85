package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/asaskevich/EventBus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockpos/stockpos/internal/domain"
	"github.com/stockpos/stockpos/internal/ledger"
)

// TopicStockChanged is published with (barcode string, quantity float64)
// whenever an order operation commits a new stock level.
const TopicStockChanged = "stock.changed"

// OrderService orchestrates the product catalog, the inventory ledger and
// the line-item store. It is the only component that mutates both stock and
// line items, and each mutating operation runs as a single transaction so
// readers never observe a debit without its line item.
type OrderService struct {
	db  *gorm.DB
	bus EventBus.Bus
}

// stockEvent is a committed stock level pending publication. Events are
// collected inside a transaction and only published after it commits, so
// subscribers never observe a debit that was rolled back.
type stockEvent struct {
	barcode  string
	quantity float64
}

func NewOrderService(db *gorm.DB, bus EventBus.Bus) *OrderService {
	return &OrderService{db: db, bus: bus}
}

// Create validates the whole item set against current stock, then persists
// the order, its line items (price snapshotted from the current product
// price) and the stock debits. Any failure aborts the entire operation.
func (s *OrderService) Create(ctx context.Context, items map[string]float64, description string) (*domain.OrderView, error) {
	var view *domain.OrderView
	var events []stockEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.resolveForUpdate(tx, items)
		if err != nil {
			return err
		}
		for i := range products {
			if err := ledger.VerifyAvailability(&products[i], items[products[i].Barcode]); err != nil {
				return err
			}
		}
		order := domain.SalesOrder{Description: description}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := s.createItems(ctx, tx, order.ID, products, items, &events); err != nil {
			return err
		}
		view, err = s.loadView(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishStock(events)
	return view, nil
}

// Get returns the assembled order view.
func (s *OrderService) Get(ctx context.Context, orderID int64) (*domain.OrderView, error) {
	var view *domain.OrderView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		view, err = s.loadView(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Update replaces the order content: restore-then-replace, not a diff.
// Phase one credits every existing line item back and removes them, and
// commits on its own. Only then is the new item set validated against the
// restored stock; a validation failure leaves the order with no items and
// the original stock back. Known consistency gap, kept deliberately.
func (s *OrderService) Update(ctx context.Context, orderID int64, items map[string]float64, description string) (*domain.OrderView, error) {
	var restored []stockEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOrder(tx, orderID); err != nil {
			return err
		}
		return s.restoreItems(ctx, tx, orderID, &restored)
	})
	if err != nil {
		return nil, err
	}
	s.publishStock(restored)

	var view *domain.OrderView
	var events []stockEvent
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.resolveForUpdate(tx, items)
		if err != nil {
			return err
		}
		for i := range products {
			if err := ledger.VerifyAvailability(&products[i], items[products[i].Barcode]); err != nil {
				return err
			}
		}
		if description != "" {
			if err := tx.Model(&domain.SalesOrder{}).Where("id = ?", orderID).
				Update("description", description).Error; err != nil {
				return err
			}
		}
		if err := s.createItems(ctx, tx, orderID, products, items, &events); err != nil {
			return err
		}
		view, err = s.loadView(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishStock(events)
	return view, nil
}

// Delete credits every line item back to its product, then removes the line
// items and the order. A missing order is a silent no-op.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	var events []stockEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOrder(tx, orderID); err != nil {
			if IsNotFound(err) {
				return nil
			}
			return err
		}
		if err := s.restoreItems(ctx, tx, orderID, &events); err != nil {
			return err
		}
		return tx.Delete(&domain.SalesOrder{}, orderID).Error
	})
	if err != nil {
		return err
	}
	s.publishStock(events)
	return nil
}

// List returns all order views in storage order.
func (s *OrderService) List(ctx context.Context) ([]domain.OrderView, error) {
	return s.listViews(ctx, nil, nil)
}

// ListRange returns order views whose created_at falls inside the given
// bounds, both inclusive. A nil bound is open; with neither bound set all
// orders are returned.
func (s *OrderService) ListRange(ctx context.Context, start, end *time.Time) ([]domain.OrderView, error) {
	return s.listViews(ctx, start, end)
}

func (s *OrderService) listViews(ctx context.Context, start, end *time.Time) ([]domain.OrderView, error) {
	views := make([]domain.OrderView, 0)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Order("id")
		if start != nil {
			q = q.Where("created_at >= ?", *start)
		}
		if end != nil {
			q = q.Where("created_at <= ?", *end)
		}
		var orders []domain.SalesOrder
		if err := q.Find(&orders).Error; err != nil {
			return err
		}
		for i := range orders {
			view, err := s.loadView(ctx, tx, orders[i].ID)
			if err != nil {
				return err
			}
			views = append(views, *view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// resolveForUpdate loads every requested product, locking the rows on
// postgres so the availability check and the debit cannot interleave with a
// concurrent creator reading the same pre-debit quantity. Barcodes are
// visited in sorted order to keep lock acquisition deterministic.
func (s *OrderService) resolveForUpdate(tx *gorm.DB, items map[string]float64) ([]domain.Product, error) {
	barcodes := make([]string, 0, len(items))
	for barcode := range items {
		barcodes = append(barcodes, barcode)
	}
	sort.Strings(barcodes)

	products := make([]domain.Product, 0, len(barcodes))
	for _, barcode := range barcodes {
		var product domain.Product
		err := rowLock(tx).Where("barcode = ?", barcode).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", Key: barcode}
		}
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// createItems persists one line item per product with the current price as
// snapshot, then debits the product's stock.
func (s *OrderService) createItems(ctx context.Context, tx *gorm.DB, orderID int64, products []domain.Product, items map[string]float64, events *[]stockEvent) error {
	lineItems := NewGormLineItemStore(tx)
	for i := range products {
		product := &products[i]
		amount := items[product.Barcode]
		if _, err := lineItems.Create(ctx, product.ID, orderID, amount, product.Price); err != nil {
			return err
		}
		quantity := ledger.Debit(product.Quantity, amount)
		if err := tx.Model(&domain.Product{}).Where("id = ?", product.ID).
			Update("quantity", quantity).Error; err != nil {
			return err
		}
		*events = append(*events, stockEvent{barcode: product.Barcode, quantity: quantity})
	}
	return nil
}

// restoreItems credits every line item of the order back onto its product
// and deletes the line items.
func (s *OrderService) restoreItems(ctx context.Context, tx *gorm.DB, orderID int64, events *[]stockEvent) error {
	lineItems := NewGormLineItemStore(tx)
	items, err := lineItems.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, item := range items {
		var product domain.Product
		if err := rowLock(tx).First(&product, item.ProductID).Error; err != nil {
			return err
		}
		quantity := ledger.Credit(product.Quantity, item.Amount)
		if err := tx.Model(&domain.Product{}).Where("id = ?", product.ID).
			Update("quantity", quantity).Error; err != nil {
			return err
		}
		*events = append(*events, stockEvent{barcode: product.Barcode, quantity: quantity})
	}
	return lineItems.DeleteAllByOrder(ctx, orderID)
}

func (s *OrderService) loadView(ctx context.Context, tx *gorm.DB, orderID int64) (*domain.OrderView, error) {
	order, err := findOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := NewGormLineItemStore(tx).ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	products := make(map[int64]domain.Product, len(items))
	if len(items) > 0 {
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
		var rows []domain.Product
		if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			products[row.ID] = row
		}
	}
	return buildOrderView(order, items, products), nil
}

func findOrder(tx *gorm.DB, orderID int64) (*domain.SalesOrder, error) {
	var order domain.SalesOrder
	err := tx.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "order", Key: strconv.FormatInt(orderID, 10)}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// rowLock adds FOR UPDATE on dialects that support it; sqlite serializes
// writers on its own and rejects the clause.
func rowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (s *OrderService) publishStock(events []stockEvent) {
	if s.bus == nil {
		return
	}
	for _, ev := range events {
		s.bus.Publish(TopicStockChanged, ev.barcode, ev.quantity)
	}
}
