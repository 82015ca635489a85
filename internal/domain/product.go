package domain

import "time"

// Product is a catalog item. Barcode is the external key used by all
// order operations; the surrogate ID never leaves the storage layer.
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Barcode     string    `gorm:"uniqueIndex;size:128" json:"barcode" form:"barcode"`
	Description string    `json:"description" form:"description"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"` // URL or opaque reference to product image
	Quantity    float64   `json:"quantity" form:"quantity"`            // stock on hand, never negative after a committed operation
	Unit        string    `gorm:"size:32" json:"unit" form:"unit"`     // unit-of-measure tag, e.g. Kg, L, m2
	Price       float64   `json:"price" form:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
