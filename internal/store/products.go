package store

import (
	"context"
	"errors"

	"github.com/mitchellh/mapstructure"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/stockpos/stockpos/internal/domain"
)

// ProductPatch carries a partial product update. Nil fields keep their
// previous value; this is a merge, not a replace.
type ProductPatch struct {
	Name        *string  `mapstructure:"name"`
	Barcode     *string  `mapstructure:"barcode"`
	Description *string  `mapstructure:"description"`
	Image       *string  `mapstructure:"image"`
	Quantity    *float64 `mapstructure:"quantity"`
	Unit        *string  `mapstructure:"unit"`
	Price       *float64 `mapstructure:"price"`
}

// DecodeProductPatch builds a patch from a loose field map, as delivered by
// a JSON request body.
func DecodeProductPatch(fields map[string]interface{}) (*ProductPatch, error) {
	var patch ProductPatch
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &patch,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, pkgerrors.Wrap(err, "decode product patch")
	}
	return &patch, nil
}

func (p *ProductPatch) apply(prod *domain.Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Barcode != nil {
		prod.Barcode = *p.Barcode
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		prod.Unit = *p.Unit
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
}

// ProductStore is the catalog port: all product persistence goes through it.
type ProductStore interface {
	Insert(ctx context.Context, product *domain.Product) error
	GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	UpdateByBarcode(ctx context.Context, barcode string, patch *ProductPatch) (*domain.Product, error)
	DeleteByBarcode(ctx context.Context, barcode string) error
	List(ctx context.Context, limit int) ([]domain.Product, error)
}

// GormProductStore is the GORM implementation of ProductStore.
type GormProductStore struct {
	db *gorm.DB
}

func NewGormProductStore(db *gorm.DB) *GormProductStore {
	return &GormProductStore{db: db}
}

func (s *GormProductStore) Insert(ctx context.Context, product *domain.Product) error {
	err := s.db.WithContext(ctx).Create(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateBarcodeError{Barcode: product.Barcode}
	}
	return err
}

func (s *GormProductStore) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "product", Key: barcode}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormProductStore) UpdateByBarcode(ctx context.Context, barcode string, patch *ProductPatch) (*domain.Product, error) {
	product, err := s.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	patch.apply(product)
	err = s.db.WithContext(ctx).Save(product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &DuplicateBarcodeError{Barcode: product.Barcode}
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteByBarcode removes a product. A missing barcode is a silent no-op,
// but a product still referenced by a line item is refused.
func (s *GormProductStore) DeleteByBarcode(ctx context.Context, barcode string) error {
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).Delete(&domain.Product{}).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &ProductInUseError{Barcode: barcode}
	}
	return err
}

// List returns products in storage order. A limit <= 0 means unbounded.
func (s *GormProductStore) List(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	db := s.db.WithContext(ctx).Order("id")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&products).Error
	return products, err
}
