package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cashier is an employee identity attached to a transaction. Immutable after
// creation.
type Cashier struct {
	ID     int
	Name   string
	Salary decimal.Decimal
}

func (c Cashier) String() string {
	return fmt.Sprintf("Cashier: %s - Identification: %d", c.Name, c.ID)
}
