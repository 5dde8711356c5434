package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/angelmondragon/cartengine/internal/checkout/helpers"
	"github.com/angelmondragon/cartengine/internal/delivery"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/metrics"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/shopspring/decimal"
)

// DuplicatesMessage is returned when checkout is blocked by duplicate products.
const DuplicatesMessage = "cart contains the same product more than once"

// CartSession is the slice of a cart session the gate needs.
type CartSession interface {
	CartID() string
	Items() []cart.CartItem
	IsEmpty() bool
	Summary(deliveryCharge, freeDeliveryThreshold decimal.Decimal) cart.Summary
	Clear(ctx context.Context) error
}

type defaultsQuoter interface {
	Defaults() delivery.Terms
}

// ReviewInput carries what the shopper submits at checkout.
type ReviewInput struct {
	PostalCode         string
	OverrideDuplicates bool
}

// Review is the pre-checkout view of a cart.
type Review struct {
	CartID             string           `json:"cart_id"`
	Terms              delivery.Terms   `json:"terms"`
	Summary            cart.Summary     `json:"summary"`
	FormattedTotal     string           `json:"formatted_total"`
	DuplicateGroups    []DuplicateGroup `json:"duplicate_groups,omitempty"`
	RequiresResolution bool             `json:"requires_resolution"`
}

// Gate decides whether a cart may proceed to payment.
type Gate struct {
	quoter  delivery.Quoter
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewGate builds a checkout gate.
func NewGate(quoter delivery.Quoter, logg *logger.Logger, rec *metrics.CartMetrics) (*Gate, error) {
	if quoter == nil {
		return nil, fmt.Errorf("delivery quoter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Gate{quoter: quoter, logg: logg, metrics: rec}, nil
}

// Review prices the cart and reports duplicate groups. Without a postal code it
// falls back to the quoter's default terms when the quoter has them.
func (g *Gate) Review(ctx context.Context, session CartSession, input ReviewInput) (*Review, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session required")
	}
	terms, err := g.terms(ctx, input.PostalCode)
	if err != nil {
		return nil, err
	}

	items := session.Items()
	groups := DetectDuplicateGroups(items)
	g.metrics.ObserveDuplicateGroups(len(groups))

	summary := session.Summary(terms.Charge, terms.FreeDeliveryThreshold)
	return &Review{
		CartID:             session.CartID(),
		Terms:              terms,
		Summary:            summary,
		FormattedTotal:     money.MustFormat(summary.GrandTotal, string(terms.Currency)),
		DuplicateGroups:    groups,
		RequiresResolution: len(groups) > 0 && !input.OverrideDuplicates,
	}, nil
}

// Proceed validates the cart for payment. Duplicate groups block it unless the
// shopper chose to continue anyway.
func (g *Gate) Proceed(ctx context.Context, session CartSession, input ReviewInput) (*Review, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session required")
	}
	ctx = g.logg.WithCartID(ctx, session.CartID())
	if session.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := helpers.ValidateDeliveryDetails(session.Items(), input.PostalCode); err != nil {
		return nil, err
	}

	review, err := g.Review(ctx, session, input)
	if err != nil {
		return nil, err
	}
	if review.RequiresResolution {
		g.logg.Info(g.logg.WithField(ctx, "duplicate_groups", len(review.DuplicateGroups)), "checkout blocked by duplicate products")
		return review, pkgerrors.New(pkgerrors.CodeStateConflict, DuplicatesMessage).
			WithDetails(map[string]any{"groups": groupDetails(review.DuplicateGroups)})
	}
	if len(review.DuplicateGroups) > 0 {
		g.logg.Info(g.logg.WithField(ctx, "duplicate_groups", len(review.DuplicateGroups)), "duplicate products accepted by shopper")
	}
	return review, nil
}

// Complete empties the cart after the order was placed.
func (g *Gate) Complete(ctx context.Context, session CartSession) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart session required")
	}
	ctx = g.logg.WithCartID(ctx, session.CartID())
	if err := session.Clear(ctx); err != nil {
		return err
	}
	g.logg.Info(ctx, "checkout completed, cart cleared")
	return nil
}

func (g *Gate) terms(ctx context.Context, postalCode string) (delivery.Terms, error) {
	if strings.TrimSpace(postalCode) == "" {
		if defaults, ok := g.quoter.(defaultsQuoter); ok {
			return defaults.Defaults(), nil
		}
	}
	terms, err := g.quoter.Quote(ctx, postalCode)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return delivery.Terms{}, err
		}
		return delivery.Terms{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "quote delivery")
	}
	return terms, nil
}

func groupDetails(groups []DuplicateGroup) []map[string]any {
	out := make([]map[string]any, 0, len(groups))
	for _, group := range groups {
		itemIDs := make([]string, 0, len(group.Items))
		for _, item := range group.Items {
			itemIDs = append(itemIDs, item.ID.String())
		}
		out = append(out, map[string]any{
			"product_id":   group.ProductID,
			"product_name": group.ProductName,
			"item_ids":     itemIDs,
			"differences":  group.DifferenceLabels(),
		})
	}
	return out
}
