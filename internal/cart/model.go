package cart

import (
	"strings"
	"time"

	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot taken when the shopper selected the item.
type Product struct {
	ID                  string           `json:"id" validate:"required"`
	Name                string           `json:"name" validate:"required"`
	Slug                string           `json:"slug,omitempty"`
	BasePrice           decimal.Decimal  `json:"base_price" validate:"gte=0"`
	BaseDiscountedPrice *decimal.Decimal `json:"base_discounted_price,omitempty" validate:"omitempty,gte=0"`
	BaseWeight          string           `json:"base_weight,omitempty"`
}

// PriceFields exposes the product's base pricing.
func (p Product) PriceFields() money.PriceFields {
	return money.PriceFields{
		Price:           p.BasePrice,
		DiscountedPrice: p.BaseDiscountedPrice,
	}
}

// Variant overrides the product's base price, typically per weight.
type Variant struct {
	ID                 string           `json:"id,omitempty"`
	Weight             string           `json:"weight,omitempty"`
	Price              decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// PriceFields exposes the variant's pricing.
func (v Variant) PriceFields() money.PriceFields {
	return money.PriceFields{
		Price:              v.Price,
		DiscountedPrice:    v.DiscountedPrice,
		DiscountPercentage: v.DiscountPercentage,
	}
}

type Flavor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ComboSelection is an add-on attached to one cart item. Name and category are
// denormalized at selection time.
type ComboSelection struct {
	AddOnID            string           `json:"add_on_id" validate:"required"`
	Name               string           `json:"name,omitempty"`
	Category           string           `json:"category,omitempty"`
	Price              decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Quantity           int              `json:"quantity" validate:"min=1"`
}

// PriceFields exposes the add-on's pricing.
func (c ComboSelection) PriceFields() money.PriceFields {
	return money.PriceFields{
		Price:              c.Price,
		DiscountedPrice:    c.DiscountedPrice,
		DiscountPercentage: c.DiscountPercentage,
	}
}

func (c ComboSelection) clone() ComboSelection {
	out := c
	out.DiscountedPrice = money.CopyPtr(c.DiscountedPrice)
	out.DiscountPercentage = money.CopyPtr(c.DiscountPercentage)
	return out
}

// DeliverySlot is the requested delivery date and time window.
type DeliverySlot struct {
	Date      time.Time `json:"date"`
	SlotID    string    `json:"slot_id,omitempty"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Label     string    `json:"label,omitempty"`
}

// ItemWarning is attached to a line when a refresh notices something the
// shopper should see.
type ItemWarning struct {
	Type    enums.CartItemWarningType `json:"type"`
	Message string                    `json:"message"`
}

// CartItem is one line in the cart. TotalPrice is derived and recomputed by
// every mutation that touches the line.
type CartItem struct {
	ID           uuid.UUID        `json:"id"`
	Product      Product          `json:"product"`
	Variant      *Variant         `json:"variant,omitempty"`
	Flavor       *Flavor          `json:"flavor,omitempty"`
	Tier         string           `json:"tier,omitempty"`
	Combos       []ComboSelection `json:"combos,omitempty"`
	DeliverySlot *DeliverySlot    `json:"delivery_slot,omitempty"`
	Message      string           `json:"message,omitempty"`
	Quantity     int              `json:"quantity"`
	IsDealItem   bool             `json:"is_deal_item"`
	DealPrice    *decimal.Decimal `json:"deal_price,omitempty"`
	TotalPrice   decimal.Decimal  `json:"total_price"`
	Warnings     []ItemWarning    `json:"warnings,omitempty"`
	AddedAt      time.Time        `json:"added_at"`
}

// Clone returns a deep copy so snapshots never share mutable state.
func (i CartItem) Clone() CartItem {
	out := i
	if i.Variant != nil {
		v := *i.Variant
		v.DiscountedPrice = money.CopyPtr(i.Variant.DiscountedPrice)
		v.DiscountPercentage = money.CopyPtr(i.Variant.DiscountPercentage)
		out.Variant = &v
	}
	if i.Flavor != nil {
		f := *i.Flavor
		out.Flavor = &f
	}
	if i.DeliverySlot != nil {
		s := *i.DeliverySlot
		out.DeliverySlot = &s
	}
	out.Product.BaseDiscountedPrice = money.CopyPtr(i.Product.BaseDiscountedPrice)
	out.DealPrice = money.CopyPtr(i.DealPrice)
	if i.Combos != nil {
		out.Combos = make([]ComboSelection, len(i.Combos))
		for idx, combo := range i.Combos {
			out.Combos[idx] = combo.clone()
		}
	}
	if i.Warnings != nil {
		out.Warnings = append([]ItemWarning(nil), i.Warnings...)
	}
	return out
}

// AppliedPromo is the single active discount of a cart session.
type AppliedPromo struct {
	Code           string             `json:"code"`
	Description    string             `json:"description,omitempty"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	DiscountType   enums.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal    `json:"discount_value"`
	AppliedAt      time.Time          `json:"applied_at"`
}

// IsCorrupt reports persisted promo state that must be discarded on load.
func (p *AppliedPromo) IsCorrupt() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Code) == "" || !p.DiscountAmount.IsPositive()
}

func (p *AppliedPromo) clone() *AppliedPromo {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

// Snapshot is the full cart state handed to the persistence collaborator.
type Snapshot struct {
	CartID     string        `json:"cart_id"`
	Items      []CartItem    `json:"items"`
	SavedItems []CartItem    `json:"saved_items"`
	Promo      *AppliedPromo `json:"promo,omitempty"`
	Version    int64         `json:"version"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Items = cloneItems(s.Items)
	out.SavedItems = cloneItems(s.SavedItems)
	out.Promo = s.Promo.clone()
	return out
}

func cloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func findItem(items []CartItem, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
