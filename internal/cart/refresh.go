package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange reports a line whose unit price moved during a refresh.
type PriceChange struct {
	ItemID    uuid.UUID
	ProductID string
	Saved     bool
	Previous  decimal.Decimal
	Current   decimal.Decimal
}

type pricingKey struct {
	productID string
	variantID string
}

type pricingLookup struct {
	fields      money.PriceFields
	unavailable bool
}

// RefreshPrices re-reads catalog pricing for every line, active and saved.
// Changed prices and unavailable products are surfaced as line warnings;
// unavailable add-ons are removed from their line.
func (s *Session) RefreshPrices(ctx context.Context) ([]PriceChange, error) {
	if s.catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog loader not configured")
	}

	current := s.Snapshot()
	products := map[pricingKey]pricingLookup{}
	addOns := map[string]pricingLookup{}
	for _, item := range append(current.Items, current.SavedItems...) {
		key := pricingKey{productID: item.Product.ID}
		if item.Variant != nil {
			key.variantID = item.Variant.ID
		}
		if _, ok := products[key]; !ok {
			fields, err := s.catalog.ProductPricing(ctx, key.productID, key.variantID)
			lookup, err := toLookup(fields, err)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product pricing")
			}
			products[key] = lookup
		}
		for _, combo := range item.Combos {
			if _, ok := addOns[combo.AddOnID]; ok {
				continue
			}
			fields, err := s.catalog.AddOnPricing(ctx, combo.AddOnID)
			lookup, err := toLookup(fields, err)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load add-on pricing")
			}
			addOns[combo.AddOnID] = lookup
		}
	}

	var changes []PriceChange
	err := s.mutate(ctx, enums.MutationRefreshPrices, func(state *Snapshot) error {
		changes = nil
		for i := range state.Items {
			if change, ok := refreshLine(&state.Items[i], products, addOns); ok {
				changes = append(changes, change)
			}
		}
		for i := range state.SavedItems {
			if change, ok := refreshLine(&state.SavedItems[i], products, addOns); ok {
				change.Saved = true
				changes = append(changes, change)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func toLookup(fields money.PriceFields, err error) (pricingLookup, error) {
	if errors.Is(err, ErrCatalogUnavailable) {
		return pricingLookup{unavailable: true}, nil
	}
	if err != nil {
		return pricingLookup{}, err
	}
	return pricingLookup{fields: fields}, nil
}

func refreshLine(item *CartItem, products map[pricingKey]pricingLookup, addOns map[string]pricingLookup) (PriceChange, bool) {
	key := pricingKey{productID: item.Product.ID}
	if item.Variant != nil {
		key.variantID = item.Variant.ID
	}
	lookup, ok := products[key]
	if !ok {
		// Line was added after the catalog reads.
		return PriceChange{}, false
	}

	item.Warnings = nil
	var (
		change  PriceChange
		changed bool
	)
	if lookup.unavailable {
		item.Warnings = append(item.Warnings, ItemWarning{
			Type:    enums.CartItemWarningTypeNotAvailable,
			Message: fmt.Sprintf("%s is no longer available", item.Product.Name),
		})
	} else {
		previous := item.UnitPrice()
		applyProductPricing(item, lookup.fields)
		if next := item.UnitPrice(); !next.Equal(previous) {
			item.Warnings = append(item.Warnings, ItemWarning{
				Type:    enums.CartItemWarningTypePriceChanged,
				Message: fmt.Sprintf("price changed from %s to %s", previous.StringFixed(2), next.StringFixed(2)),
			})
			change = PriceChange{ItemID: item.ID, ProductID: item.Product.ID, Previous: previous, Current: next}
			changed = true
		}
	}

	kept := item.Combos[:0]
	for _, combo := range item.Combos {
		addOn, ok := addOns[combo.AddOnID]
		if ok && addOn.unavailable {
			item.Warnings = append(item.Warnings, ItemWarning{
				Type:    enums.CartItemWarningTypeAddOnRemoved,
				Message: fmt.Sprintf("%s was removed because it is no longer available", comboLabel(combo)),
			})
			continue
		}
		if ok {
			combo.Price = addOn.fields.Price
			combo.DiscountedPrice = money.CopyPtr(addOn.fields.DiscountedPrice)
			combo.DiscountPercentage = money.CopyPtr(addOn.fields.DiscountPercentage)
		}
		kept = append(kept, combo)
	}
	item.Combos = kept
	if len(item.Combos) == 0 {
		item.Combos = nil
	}
	recompute(item)
	return change, changed
}

func applyProductPricing(item *CartItem, fields money.PriceFields) {
	if item.Variant != nil {
		item.Variant.Price = fields.Price
		item.Variant.DiscountedPrice = money.CopyPtr(fields.DiscountedPrice)
		item.Variant.DiscountPercentage = money.CopyPtr(fields.DiscountPercentage)
		return
	}
	item.Product.BasePrice = fields.Price
	item.Product.BaseDiscountedPrice = money.CopyPtr(fields.DiscountedPrice)
}

func comboLabel(combo ComboSelection) string {
	if combo.Name != "" {
		return combo.Name
	}
	return combo.AddOnID
}
