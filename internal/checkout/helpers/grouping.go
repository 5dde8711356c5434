package helpers

import (
	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/shopspring/decimal"
)

// ProductGroup is every regular line sharing one base product.
type ProductGroup struct {
	ProductID   string
	ProductName string
	Items       []cart.CartItem
}

// PartitionDealItems splits lines into regular and deal lines, preserving order.
func PartitionDealItems(items []cart.CartItem) (regular, deal []cart.CartItem) {
	for _, item := range items {
		if item.IsDealItem {
			deal = append(deal, item)
			continue
		}
		regular = append(regular, item)
	}
	return regular, deal
}

// GroupItemsByProduct groups lines by product id in first-seen order.
func GroupItemsByProduct(items []cart.CartItem) []ProductGroup {
	index := make(map[string]int, len(items))
	var groups []ProductGroup
	for _, item := range items {
		pos, ok := index[item.Product.ID]
		if !ok {
			pos = len(groups)
			index[item.Product.ID] = pos
			groups = append(groups, ProductGroup{ProductID: item.Product.ID, ProductName: item.Product.Name})
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}

// ComputeGroupTotal sums the derived totals of the provided lines.
func ComputeGroupTotal(items []cart.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(cart.ComputeItemTotal(item))
	}
	return total
}
