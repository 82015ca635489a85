package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockpos/stockpos/internal/domain"
)

// LineItemStore owns the order-to-product association rows. There is no
// per-item mutation: orders are replaced wholesale on update.
type LineItemStore interface {
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	Create(ctx context.Context, productID, orderID int64, amount, price float64) (*domain.OrderItem, error)
	DeleteAllByOrder(ctx context.Context, orderID int64) error
}

// GormLineItemStore is the GORM implementation of LineItemStore.
type GormLineItemStore struct {
	db *gorm.DB
}

func NewGormLineItemStore(db *gorm.DB) *GormLineItemStore {
	return &GormLineItemStore{db: db}
}

func (s *GormLineItemStore) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error
	return items, err
}

func (s *GormLineItemStore) Create(ctx context.Context, productID, orderID int64, amount, price float64) (*domain.OrderItem, error) {
	item := domain.OrderItem{
		ProductID: productID,
		OrderID:   orderID,
		Amount:    amount,
		Price:     price,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormLineItemStore) DeleteAllByOrder(ctx context.Context, orderID int64) error {
	return s.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error
}
