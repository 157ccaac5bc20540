package store

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrRollbackTest     = errors.New("rollback requested by caller")
	ErrInvalidQty       = errors.New("qty must be a positive integer")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidReference = errors.New("payment reference already used")
)

// InsufficientStockError bawa detail kekurangan stok supaya caller bisa
// menyesuaikan qty.
type InsufficientStockError struct {
	ProductID string
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: required=%d available=%d",
		e.ProductID, e.Required, e.Available)
}

var ErrInsufficientStock = errors.New("insufficient stock")

// Is membuat errors.Is(err, ErrInsufficientStock) jalan utk error berdetail.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
