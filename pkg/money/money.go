// Package money holds the pricing primitives shared by products, variants and
// add-ons. Every amount is a decimal to keep totals exact.
package money

import (
	"github.com/shopspring/decimal"
)

// PriceFields is the common price shape of anything that can land in a cart.
// A nil or zero DiscountedPrice means "no discounted price".
type PriceFields struct {
	Price              decimal.Decimal
	DiscountedPrice    *decimal.Decimal
	DiscountPercentage *decimal.Decimal
}

// ResolveUnitPrice returns the discounted price when a positive discount
// percentage is set or the discounted price undercuts the list price; the list
// price otherwise.
func ResolveUnitPrice(fields PriceFields) decimal.Decimal {
	if fields.DiscountedPrice == nil || !fields.DiscountedPrice.IsPositive() {
		return fields.Price
	}
	if fields.DiscountPercentage != nil && fields.DiscountPercentage.IsPositive() {
		return *fields.DiscountedPrice
	}
	if fields.DiscountedPrice.LessThan(fields.Price) {
		return *fields.DiscountedPrice
	}
	return fields.Price
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Sum adds the provided amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}

// ClampZero returns zero for negative amounts.
func ClampZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Ptr returns a pointer to a copy of the provided amount.
func Ptr(amount decimal.Decimal) *decimal.Decimal {
	return &amount
}

// CopyPtr duplicates an optional amount.
func CopyPtr(src *decimal.Decimal) *decimal.Decimal {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

// EqualPtr compares two optional amounts by value.
func EqualPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
