package cart

import (
	"context"
	"errors"

	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrSnapshotNotFound is returned by stores when no snapshot exists for a cart.
	ErrSnapshotNotFound = errors.New("cart snapshot not found")
	// ErrCatalogUnavailable is returned by catalog loaders for products or
	// add-ons that can no longer be sold.
	ErrCatalogUnavailable = errors.New("catalog entry unavailable")
)

// PromoVerdict is the validator's authoritative answer for a code.
type PromoVerdict struct {
	Code           string
	Description    string
	DiscountAmount decimal.Decimal
	DiscountType   enums.DiscountType
	DiscountValue  decimal.Decimal
}

// PromoValidator checks a code against the regular subtotal. Rejections should
// be returned as errors carrying errors.CodeInvalidPromo; their message is shown
// to the shopper verbatim.
type PromoValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error)
}

// PromoValidatorFunc adapts a function to PromoValidator.
type PromoValidatorFunc func(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error)

func (f PromoValidatorFunc) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error) {
	return f(ctx, code, subtotal)
}

// SnapshotStore persists whole cart snapshots.
type SnapshotStore interface {
	Load(ctx context.Context, cartID string) (*Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Delete(ctx context.Context, cartID string) error
}

// CatalogLoader returns current pricing for products, variants and add-ons.
// Unsellable entries are reported with ErrCatalogUnavailable.
type CatalogLoader interface {
	ProductPricing(ctx context.Context, productID, variantID string) (money.PriceFields, error)
	AddOnPricing(ctx context.Context, addOnID string) (money.PriceFields, error)
}
