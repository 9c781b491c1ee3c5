package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SaleItem is one priced, quantified line of a transaction. It references the
// product by identity and carries a name snapshot; the unit price is the
// price computed at sale time, not the delivery price.
type SaleItem struct {
	ProductID   int
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// TotalCost is unit price times quantity.
func (s SaleItem) TotalCost() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s SaleItem) String() string {
	return fmt.Sprintf("%s x%d * %s leva - %s leva",
		s.ProductName, s.Quantity, s.UnitPrice.StringFixed(2), s.TotalCost().StringFixed(2))
}
