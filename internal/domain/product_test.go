package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func foodProduct(expiry time.Time, quantity int) *Product {
	return NewProduct(100, "Waffle", decimal.RequireFromString("2.50"), expiry, quantity, CategoryFood)
}

func TestPriceOnSale_FoodMargin(t *testing.T) {
	p := foodProduct(testToday.AddDate(0, 0, 30), 10)

	price := p.PriceOnSale(testToday, 3, decimal.RequireFromString("0.15"))

	// 2.50 * 1.30, no markdown outside the window
	assert.True(t, price.Equal(decimal.RequireFromString("3.25")), "got %s", price)
}

func TestPriceOnSale_NonFoodMargin(t *testing.T) {
	p := NewProduct(200, "Parfum", decimal.RequireFromString("5.00"), testToday.AddDate(0, 0, 30), 5, CategoryNonFood)

	price := p.PriceOnSale(testToday, 3, decimal.RequireFromString("0.15"))

	assert.True(t, price.Equal(decimal.RequireFromString("7.50")), "got %s", price)
}

func TestPriceOnSale_NearExpiryMarkdown(t *testing.T) {
	// Two days to expiry with a three day window: marked down.
	p := foodProduct(testToday.AddDate(0, 0, 2), 10)

	price := p.PriceOnSale(testToday, 3, decimal.RequireFromString("0.15"))

	// 3.25 * 0.85
	assert.True(t, price.Equal(decimal.RequireFromString("2.7625")), "got %s", price)
}

func TestPriceOnSale_WindowBoundary(t *testing.T) {
	rate := decimal.RequireFromString("0.15")

	// Exactly thresholdDays out: expiry minus threshold equals today, which
	// is not strictly before today, so no markdown yet.
	atBoundary := foodProduct(testToday.AddDate(0, 0, 3), 10)
	assert.True(t, atBoundary.PriceOnSale(testToday, 3, rate).Equal(decimal.RequireFromString("3.25")))

	// One day inside the window.
	inside := foodProduct(testToday.AddDate(0, 0, 2), 10)
	assert.True(t, inside.PriceOnSale(testToday, 3, rate).Equal(decimal.RequireFromString("2.7625")))

	// Expiring today is still sellable and marked down.
	today := foodProduct(testToday, 10)
	assert.True(t, today.IsCloseToExpire(testToday, 3))
	assert.True(t, today.PriceOnSale(testToday, 3, rate).Equal(decimal.RequireFromString("2.7625")))
}

func TestPriceOnSale_ExpiredProductGetsNoMarkdown(t *testing.T) {
	// The pipeline rejects expired products before pricing, but the method
	// itself must stay well defined: an expired product is outside the
	// markdown window and prices at base.
	p := foodProduct(testToday.AddDate(0, 0, -1), 10)

	price := p.PriceOnSale(testToday, 3, decimal.RequireFromString("0.15"))

	assert.True(t, price.Equal(decimal.RequireFromString("3.25")), "got %s", price)
}

func TestIsExpired(t *testing.T) {
	p := foodProduct(testToday, 10)

	assert.False(t, p.IsExpired(testToday), "still sellable on the expiry date")
	assert.True(t, p.IsExpired(testToday.AddDate(0, 0, 1)))
	assert.False(t, p.IsExpired(testToday.AddDate(0, 0, -1)))
}

func TestIsExpired_IgnoresTimeOfDay(t *testing.T) {
	p := foodProduct(testToday, 10)

	lateOnExpiryDay := time.Date(2026, 8, 31, 23, 45, 0, 0, time.UTC)
	assert.False(t, p.IsExpired(lateOnExpiryDay))
}

func TestDecreaseQuantity(t *testing.T) {
	p := foodProduct(testToday.AddDate(0, 0, 10), 10)

	require.NoError(t, p.DecreaseQuantity(3))
	assert.Equal(t, 7, p.Quantity)

	err := p.DecreaseQuantity(8)
	require.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, 7, p.Quantity, "a rejected decrease must not change stock")

	require.NoError(t, p.DecreaseQuantity(7))
	assert.Equal(t, 0, p.Quantity)
}

func TestCategoryMarginFactor(t *testing.T) {
	assert.True(t, CategoryFood.MarginFactor().Equal(decimal.RequireFromString("0.30")))
	assert.True(t, CategoryNonFood.MarginFactor().Equal(decimal.RequireFromString("0.50")))
	assert.True(t, CategoryFood.Valid())
	assert.True(t, CategoryNonFood.Valid())
	assert.False(t, Category("beverage").Valid())
}
