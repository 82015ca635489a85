package store

import (
	"errors"
	"fmt"

	"github.com/stockpos/stockpos/internal/ledger"
)

// NotFoundError reports an unknown external key (product barcode or order
// id). Recoverable; the transport layer maps it to a 404.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// DuplicateBarcodeError reports a unique-constraint violation on
// products.barcode. Surfaced, never retried.
type DuplicateBarcodeError struct {
	Barcode string
}

func (e *DuplicateBarcodeError) Error() string {
	return fmt.Sprintf("duplicate barcode: %s", e.Barcode)
}

// ProductInUseError reports an attempt to delete a product that is still
// referenced by at least one line item.
type ProductInUseError struct {
	Barcode string
}

func (e *ProductInUseError) Error() string {
	return fmt.Sprintf("product in use by an order: %s", e.Barcode)
}

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicateBarcode reports whether err is a barcode uniqueness violation.
func IsDuplicateBarcode(err error) bool {
	var dup *DuplicateBarcodeError
	return errors.As(err, &dup)
}

// IsProductInUse reports whether err is a delete rejected by the line-item
// foreign key.
func IsProductInUse(err error) bool {
	var iu *ProductInUseError
	return errors.As(err, &iu)
}

// IsInsufficientStock reports whether err is a stock shortage.
func IsInsufficientStock(err error) bool {
	var is *ledger.InsufficientStockError
	return errors.As(err, &is)
}

// IsInvalidAmount reports whether err is a non-positive amount validation
// failure.
func IsInvalidAmount(err error) bool {
	var ia *ledger.InvalidAmountError
	return errors.As(err, &ia)
}
