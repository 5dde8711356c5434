package cart

import (
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/shopspring/decimal"
)

// UnitPrice resolves the line's unit price from the variant when present, the
// product base price otherwise.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.Variant != nil {
		return money.ResolveUnitPrice(i.Variant.PriceFields())
	}
	return money.ResolveUnitPrice(i.Product.PriceFields())
}

// UnitPrice resolves the add-on's effective unit price.
func (c ComboSelection) UnitPrice() decimal.Decimal {
	return money.ResolveUnitPrice(c.PriceFields())
}

// Subtotal is the effective unit price times quantity.
func (c ComboSelection) Subtotal() decimal.Decimal {
	return money.LineTotal(c.UnitPrice(), c.Quantity)
}

// ComboTotal sums every selection's subtotal; zero for an empty list.
func ComboTotal(combos []ComboSelection) decimal.Decimal {
	total := decimal.Zero
	for _, combo := range combos {
		total = total.Add(combo.Subtotal())
	}
	return total
}

// ComputeItemTotal derives a line's total. Deal lines are priced at the deal
// price (falling back to the resolved unit price) for exactly one unit.
func ComputeItemTotal(item CartItem) decimal.Decimal {
	combos := ComboTotal(item.Combos)
	if item.IsDealItem {
		unit := item.UnitPrice()
		if item.DealPrice != nil {
			unit = *item.DealPrice
		}
		return unit.Add(combos)
	}
	return money.LineTotal(item.UnitPrice(), item.Quantity).Add(combos)
}

func recompute(item *CartItem) {
	item.TotalPrice = ComputeItemTotal(*item)
}
