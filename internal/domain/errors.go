package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCashierRequired rejects a receipt built without a cashier.
	ErrCashierRequired = errors.New("cashier is required and cannot be nil")

	// ErrItemsRequired rejects a receipt built from a nil item list.
	ErrItemsRequired = errors.New("items list is required and cannot be nil")

	// ErrNoItems rejects a receipt or basket with nothing in it.
	ErrNoItems = errors.New("at least one item must be purchased")

	// ErrInsufficientQuantity guards Product.DecreaseQuantity. The stock
	// check in the transaction pipeline runs first, so hitting this from the
	// pipeline means an invariant was broken.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// NilItemError reports the first nil entry in a receipt's item list.
type NilItemError struct {
	Position int
}

func (e *NilItemError) Error() string {
	return fmt.Sprintf("item at position %d is nil", e.Position)
}

// ProductUnavailableError means the requested product is not in the catalog
// or has passed its expiry date. The two causes are deliberately not
// distinguished; callers hold the product id and can consult the catalog.
type ProductUnavailableError struct {
	ProductID int
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is expired or not in the catalog", e.ProductID)
}

// OutOfStockError means the requested quantity exceeds what is available.
type OutOfStockError struct {
	ProductName string
	Available   int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("not enough quantity of %q: only %d available", e.ProductName, e.Available)
}

// PersistenceError wraps a failure of the receipt archive. By the time the
// archive is invoked the catalog has already been mutated, so this error does
// not imply a rollback.
type PersistenceError struct {
	Number int
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist receipt %d: %v", e.Number, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
