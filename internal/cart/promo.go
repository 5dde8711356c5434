package cart

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/metrics"
	"github.com/shopspring/decimal"
)

// NormalizePromoCode trims and upper-cases shopper input.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InvalidPromo builds the rejection a validator returns for a code.
func InvalidPromo(reason string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvalidPromo, reason)
}

// ApplyPromo validates the code against the current regular subtotal and
// replaces any applied promo on success. Rejections leave the cart untouched.
func (s *Session) ApplyPromo(ctx context.Context, code string) (*AppliedPromo, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	verdict, err := s.validatePromo(ctx, code, s.RegularSubtotal())
	if err != nil {
		return nil, err
	}

	applied := &AppliedPromo{
		Code:           NormalizePromoCode(verdict.Code),
		Description:    verdict.Description,
		DiscountAmount: verdict.DiscountAmount,
		DiscountType:   verdict.DiscountType,
		DiscountValue:  verdict.DiscountValue,
		AppliedAt:      s.now().UTC(),
	}
	if applied.Code == "" {
		applied.Code = code
	}

	err = s.mutate(ctx, enums.MutationApplyPromo, func(state *Snapshot) error {
		state.Promo = applied.clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithCartID(ctx, s.cartID), map[string]any{
		"promo_code":      applied.Code,
		"discount_amount": applied.DiscountAmount.String(),
	}), "promo applied")
	return applied.clone(), nil
}

// RemovePromo clears the applied promo. Removing when none is applied is a no-op.
func (s *Session) RemovePromo(ctx context.Context) error {
	return s.mutate(ctx, enums.MutationRemovePromo, func(state *Snapshot) error {
		state.Promo = nil
		return nil
	})
}

// validatePromo calls the validator with the configured timeout and maps its
// answer onto the engine's error codes.
func (s *Session) validatePromo(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error) {
	return runValidation(ctx, s.validator, s.promoCfg.ValidationTimeout, s.metrics, code, subtotal)
}

func runValidation(ctx context.Context, validator PromoValidator, timeout time.Duration, rec *metrics.CartMetrics, code string, subtotal decimal.Decimal) (*PromoVerdict, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	verdict, err := validator.Validate(ctx, code, subtotal)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInvalidPromo) {
			rec.IncPromoValidation(metrics.PromoOutcomeInvalid)
			return nil, pkgerrors.As(err)
		}
		rec.IncPromoValidation(metrics.PromoOutcomeUnavailable)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promo validation unavailable")
	}
	if verdict == nil || !verdict.DiscountAmount.IsPositive() {
		rec.IncPromoValidation(metrics.PromoOutcomeInvalid)
		return nil, InvalidPromo("promo code does not apply to this cart")
	}
	rec.IncPromoValidation(metrics.PromoOutcomeValid)
	return verdict, nil
}
