package cart

import (
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/shopspring/decimal"
)

// Summary is the checkout-facing breakdown of a cart.
type Summary struct {
	RegularSubtotal         decimal.Decimal `json:"regular_subtotal"`
	DealSubtotal            decimal.Decimal `json:"deal_subtotal"`
	PromoCode               string          `json:"promo_code,omitempty"`
	PromoDiscount           decimal.Decimal `json:"promo_discount"`
	DeliveryCharge          decimal.Decimal `json:"delivery_charge"`
	EffectiveDeliveryCharge decimal.Decimal `json:"effective_delivery_charge"`
	FreeDeliveryThreshold   decimal.Decimal `json:"free_delivery_threshold"`
	FreeDeliveryEligible    bool            `json:"free_delivery_eligible"`
	AmountToFreeDelivery    decimal.Decimal `json:"amount_to_free_delivery"`
	GrandTotal              decimal.Decimal `json:"grand_total"`
	RegularItemCount        int             `json:"regular_item_count"`
	DealItemCount           int             `json:"deal_item_count"`
}

// ComputeSummary aggregates the cart. Promo discount and the free-delivery
// threshold only look at regular lines; the grand total never goes below zero.
func ComputeSummary(items []CartItem, promo *AppliedPromo, deliveryCharge, freeDeliveryThreshold decimal.Decimal) Summary {
	summary := Summary{
		RegularSubtotal:       decimal.Zero,
		DealSubtotal:          decimal.Zero,
		PromoDiscount:         decimal.Zero,
		DeliveryCharge:        deliveryCharge,
		FreeDeliveryThreshold: freeDeliveryThreshold,
	}

	for _, item := range items {
		total := ComputeItemTotal(item)
		if item.IsDealItem {
			summary.DealSubtotal = summary.DealSubtotal.Add(total)
			summary.DealItemCount++
			continue
		}
		summary.RegularSubtotal = summary.RegularSubtotal.Add(total)
		summary.RegularItemCount++
	}

	if promo != nil {
		summary.PromoCode = promo.Code
		summary.PromoDiscount = promo.DiscountAmount
	}

	summary.FreeDeliveryEligible = summary.RegularSubtotal.GreaterThanOrEqual(freeDeliveryThreshold)
	summary.EffectiveDeliveryCharge = deliveryCharge
	if summary.FreeDeliveryEligible {
		summary.EffectiveDeliveryCharge = decimal.Zero
	}

	summary.GrandTotal = money.ClampZero(
		summary.RegularSubtotal.
			Add(summary.DealSubtotal).
			Sub(summary.PromoDiscount).
			Add(summary.EffectiveDeliveryCharge),
	)
	summary.AmountToFreeDelivery = money.ClampZero(freeDeliveryThreshold.Sub(summary.RegularSubtotal))
	return summary
}

// RegularSubtotal sums non-deal lines; it is the base promo validation runs against.
func RegularSubtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.IsDealItem {
			continue
		}
		total = total.Add(ComputeItemTotal(item))
	}
	return total
}
