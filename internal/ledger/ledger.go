// Package ledger holds the pure quantity-adjustment rules for product stock.
// It computes values only; persisting the result is the caller's business.
package ledger

import (
	"fmt"
	"math"

	"github.com/stockpos/stockpos/internal/domain"
)

// InsufficientStockError reports a requested amount above the available
// quantity, carrying enough context for the caller to tell the client.
type InsufficientStockError struct {
	Barcode   string
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s has %v available", e.Barcode, e.Available)
}

// InvalidAmountError reports a non-positive requested amount. It is a
// validation failure, distinct from a stock shortage.
type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %v", e.Amount)
}

// VerifyAvailability checks whether amount can be taken from the product's
// current stock. It never mutates the product.
func VerifyAvailability(p *domain.Product, amount float64) error {
	if amount > p.Quantity {
		return &InsufficientStockError{Barcode: p.Barcode, Available: p.Quantity}
	}
	if amount <= 0 {
		return &InvalidAmountError{Amount: amount}
	}
	return nil
}

// Debit returns the stock level after taking amount, rounded to 4 decimal
// places so repeated fractional debits do not accumulate binary noise.
func Debit(quantity, amount float64) float64 {
	return math.Round((quantity-amount)*1e4) / 1e4
}

// Credit returns the stock level after restoring amount. The sum is exact:
// the restore path must not lose precision through repeated rounding.
func Credit(quantity, amount float64) float64 {
	return quantity + amount
}
