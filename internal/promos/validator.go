package promos

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/angelmondragon/cartengine/pkg/db/models"
	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/angelmondragon/cartengine/pkg/validators"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type codeFinder interface {
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// Validator answers promo lookups from the promo_codes table.
type Validator struct {
	codes    codeFinder
	currency enums.Currency
	logg     *logger.Logger
	now      func() time.Time
}

// NewValidator builds a validator over the provided code source.
func NewValidator(codes codeFinder, currency enums.Currency, logg *logger.Logger) (*Validator, error) {
	if codes == nil {
		return nil, fmt.Errorf("promo code source required")
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Validator{codes: codes, currency: currency, logg: logg, now: time.Now}, nil
}

// Validate computes the discount a code grants on the regular subtotal.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*cart.PromoVerdict, error) {
	normalized := models.NormalizePromoCode(code)
	if normalized == "" {
		return nil, cart.InvalidPromo("enter a promo code")
	}

	promo, err := v.codes.FindByCode(ctx, normalized)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, cart.InvalidPromo(fmt.Sprintf("promo code %s is not valid", normalized))
		}
		v.logg.Error(v.logg.WithFields(ctx, map[string]any{
			"promo_code": normalized,
			"error_dump": pkgerrors.Dump(err),
		}), "promo lookup failed", err)
		return nil, err
	}

	now := v.now()
	if !promo.IsRedeemableAt(now) {
		return nil, cart.InvalidPromo(unavailableReason(promo, now))
	}
	if subtotal.LessThan(promo.MinSubtotal) {
		return nil, cart.InvalidPromo(fmt.Sprintf("add items worth %s to use %s",
			money.MustFormat(promo.MinSubtotal, string(v.currency)), promo.Code))
	}

	amount, err := DiscountFor(promo, subtotal)
	if err != nil {
		v.logg.Error(v.logg.WithField(ctx, "promo_code", promo.Code), "promo definition is invalid", err)
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, cart.InvalidPromo("promo code does not apply to this cart")
	}

	return &cart.PromoVerdict{
		Code:           promo.Code,
		Description:    promo.Description,
		DiscountAmount: amount,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
	}, nil
}

// DiscountFor computes the discount of promo on subtotal. Percentage discounts
// honour MaxDiscount; no discount exceeds the subtotal.
func DiscountFor(promo *models.PromoCode, subtotal decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch promo.DiscountType {
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(promo.DiscountValue).Div(hundred).Round(2)
		if promo.MaxDiscount != nil && amount.GreaterThan(*promo.MaxDiscount) {
			amount = *promo.MaxDiscount
		}
	case enums.DiscountTypeFlat:
		amount = promo.DiscountValue
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "unknown promo discount type").
			WithDetails(map[string]any{"discount_type": string(promo.DiscountType)})
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return money.ClampZero(amount), nil
}

func unavailableReason(promo *models.PromoCode, now time.Time) string {
	switch {
	case !promo.Active:
		return fmt.Sprintf("promo code %s is no longer active", promo.Code)
	case promo.StartsAt != nil && now.Before(*promo.StartsAt):
		return fmt.Sprintf("promo code %s is not active yet", promo.Code)
	default:
		return fmt.Sprintf("promo code %s has expired", promo.Code)
	}
}

type definition struct {
	Code          string          `json:"code" validate:"required,max=64"`
	DiscountType  string          `json:"discount_type" validate:"oneof=percentage flat"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"gt=0"`
	MinSubtotal   decimal.Decimal `json:"min_subtotal" validate:"gte=0"`
}

func validateDefinition(promo *models.PromoCode) error {
	if promo == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if err := validators.Struct(definition{
		Code:          models.NormalizePromoCode(promo.Code),
		DiscountType:  string(promo.DiscountType),
		DiscountValue: promo.DiscountValue,
		MinSubtotal:   promo.MinSubtotal,
	}); err != nil {
		return err
	}
	if promo.DiscountType == enums.DiscountTypePercentage && promo.DiscountValue.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100").
			WithDetails(map[string]string{"discount_value": "must be at most 100"})
	}
	if promo.MaxDiscount != nil && !promo.MaxDiscount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "max discount must be positive").
			WithDetails(map[string]string{"max_discount": "must be greater than 0"})
	}
	return nil
}
