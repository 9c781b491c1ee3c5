package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category tags a product with its pricing class. The margin factor and the
// near-expiry markdown logic are shared across categories; only the margin
// constant differs.
type Category string

const (
	CategoryFood    Category = "food"
	CategoryNonFood Category = "non_food"
)

var (
	one           = decimal.NewFromInt(1)
	marginFood    = decimal.RequireFromString("0.30")
	marginNonFood = decimal.RequireFromString("0.50")
)

// MarginFactor returns the fractional markup applied to the delivery price
// to derive the base sale price.
func (c Category) MarginFactor() decimal.Decimal {
	if c == CategoryFood {
		return marginFood
	}
	return marginNonFood
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryFood || c == CategoryNonFood
}

// Product is an inventory item. The catalog is append-only: a product is
// created when stocked into a store and afterwards only its quantity changes,
// through DecreaseQuantity.
type Product struct {
	ID            int
	Name          string
	DeliveryPrice decimal.Decimal
	ExpiryDate    time.Time
	Quantity      int
	Category      Category
}

// NewProduct creates a catalog entry. The expiry date is normalized to a
// calendar date so expiry comparisons ignore the time of day.
func NewProduct(id int, name string, deliveryPrice decimal.Decimal, expiryDate time.Time, quantity int, category Category) *Product {
	return &Product{
		ID:            id,
		Name:          name,
		DeliveryPrice: deliveryPrice,
		ExpiryDate:    DateOf(expiryDate),
		Quantity:      quantity,
		Category:      category,
	}
}

// DateOf truncates t to its calendar date (midnight UTC).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired reports whether date is strictly after the expiry date. A product
// is still sellable on its expiry date.
func (p *Product) IsExpired(date time.Time) bool {
	return DateOf(date).After(p.ExpiryDate)
}

// IsCloseToExpire reports whether the product falls inside the markdown
// window: fewer than thresholdDays remain until expiry and the product has
// not yet expired.
func (p *Product) IsCloseToExpire(date time.Time, thresholdDays int) bool {
	return p.ExpiryDate.AddDate(0, 0, -thresholdDays).Before(DateOf(date)) && !p.IsExpired(date)
}

// PriceOnSale computes the sale price for the given date: delivery price
// marked up by the category margin, marked down by discountRate when the
// product is close to expiry. No rounding happens here; rounding is a
// display concern.
func (p *Product) PriceOnSale(date time.Time, thresholdDays int, discountRate decimal.Decimal) decimal.Decimal {
	base := p.DeliveryPrice.Mul(one.Add(p.Category.MarginFactor()))
	if p.IsCloseToExpire(date, thresholdDays) {
		base = base.Mul(one.Sub(discountRate))
	}
	return base
}

// DecreaseQuantity removes amount units from stock. Asking for more than is
// available is a hard error, never a silent clamp; the quantity stays
// non-negative.
func (p *Product) DecreaseQuantity(amount int) error {
	if amount > p.Quantity {
		return fmt.Errorf("%w: product %q has %d, requested %d", ErrInsufficientQuantity, p.Name, p.Quantity, amount)
	}
	p.Quantity -= amount
	return nil
}
