package domain

import "time"

// SalesOrder is a container record; its content lives entirely in OrderItem
// rows and is created, replaced and destroyed as a unit by the order service.
type SalesOrder struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `json:"description" form:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// OrderItem links a sales order to a product with the amount taken from
// stock and the unit price snapshotted at order-creation time. The snapshot
// is never recomputed from the live product price. Both references are
// foreign keys: a product cannot be removed while a line item points at it.
type OrderItem struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64      `gorm:"index;not null" json:"product_id"`
	OrderID   int64      `gorm:"index;not null" json:"order_id"`
	Amount    float64    `json:"amount"`
	Price     float64    `json:"price"`
	CreatedAt time.Time  `json:"created_at"`
	Product   Product    `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Order     SalesOrder `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "line_items"
}

// OrderItemView is one product entry of an assembled order view. Fields are
// an explicit allow-list: descriptive product fields plus the line item's own
// snapshotted price and amount. Live price, live quantity and surrogate IDs
// are deliberately absent.
type OrderItemView struct {
	Barcode     string  `json:"barcode"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Amount      float64 `json:"amount"`
}

// OrderView is the external shape of a sales order.
type OrderView struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	Products    []OrderItemView `json:"products"`
}
