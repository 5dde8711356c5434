package cart

import (
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/validators"
	"github.com/shopspring/decimal"
)

// ComboPayload is an add-on as it arrives from callers. Older clients identify
// the add-on by product_id or id instead of add_on_product_id.
type ComboPayload struct {
	AddOnProductID     string           `json:"add_on_product_id,omitempty"`
	ProductID          string           `json:"product_id,omitempty"`
	ID                 string           `json:"id,omitempty"`
	Name               string           `json:"name,omitempty"`
	ProductName        string           `json:"product_name,omitempty"`
	Category           string           `json:"category,omitempty"`
	Price              decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Quantity           int              `json:"quantity"`
}

// NormalizeCombo resolves the add-on identity and display name of a payload.
// The quantity is carried as-is; callers treat values below one as removal.
func NormalizeCombo(p ComboPayload) (ComboSelection, error) {
	if err := validators.Struct(p); err != nil {
		return ComboSelection{}, err
	}
	id := firstNonEmpty(p.AddOnProductID, p.ProductID, p.ID)
	if id == "" {
		return ComboSelection{}, pkgerrors.New(pkgerrors.CodeValidation, "add-on id is required").
			WithDetails(map[string]string{"add_on_product_id": "is required"})
	}
	return ComboSelection{
		AddOnID:            id,
		Name:               firstNonEmpty(p.Name, p.ProductName),
		Category:           strings.TrimSpace(p.Category),
		Price:              p.Price,
		DiscountedPrice:    p.DiscountedPrice,
		DiscountPercentage: p.DiscountPercentage,
		Quantity:           p.Quantity,
	}, nil
}

// AddItemInput describes a new cart line.
type AddItemInput struct {
	Product      Product          `json:"product"`
	Variant      *Variant         `json:"variant,omitempty"`
	Flavor       *Flavor          `json:"flavor,omitempty"`
	Tier         string           `json:"tier,omitempty"`
	Combos       []ComboPayload   `json:"combos,omitempty" validate:"omitempty,dive"`
	DeliverySlot *DeliverySlot    `json:"delivery_slot,omitempty"`
	Message      string           `json:"message,omitempty"`
	Quantity     int              `json:"quantity" validate:"min=1"`
	IsDealItem   bool             `json:"is_deal_item"`
	DealPrice    *decimal.Decimal `json:"deal_price,omitempty" validate:"omitempty,gte=0"`
}

func (in AddItemInput) normalize(messageMax int) (AddItemInput, []ComboSelection, error) {
	in.Product.ID = strings.TrimSpace(in.Product.ID)
	in.Product.Name = strings.TrimSpace(in.Product.Name)
	in.Tier = strings.TrimSpace(in.Tier)
	if err := validators.Struct(in); err != nil {
		return in, nil, err
	}
	message, err := normalizeMessage(in.Message, messageMax)
	if err != nil {
		return in, nil, err
	}
	in.Message = message

	basket := NewComboBasket(nil)
	for _, payload := range in.Combos {
		sel, err := NormalizeCombo(payload)
		if err != nil {
			return in, nil, err
		}
		if err := basket.Put(sel); err != nil {
			return in, nil, err
		}
	}
	return in, basket.Selections(), nil
}

func normalizeMessage(raw string, maxLen int) (string, error) {
	message := strings.TrimSpace(raw)
	if maxLen > 0 && validators.ExceedsLength(message, maxLen) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message is too long").
			WithDetails(map[string]any{"message": "must be at most " + strconv.Itoa(maxLen) + " characters"})
	}
	return validators.SanitizeString(message, maxLen), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
