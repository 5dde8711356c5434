package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/shopspring/decimal"
)

// Terms are the delivery charge and free-delivery threshold for one address.
type Terms struct {
	PostalCode            string
	Currency              enums.Currency
	Charge                decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

// Quoter supplies delivery terms per postal code.
type Quoter interface {
	Quote(ctx context.Context, postalCode string) (Terms, error)
}

// StaticQuoter answers from configuration: a default pair plus per-postal-code
// overrides.
type StaticQuoter struct {
	defaults  Terms
	overrides map[string]Terms
}

// NewStaticQuoter parses the delivery configuration. Override values use the
// form "<charge>/<free threshold>".
func NewStaticQuoter(cfg config.DeliveryConfig) (*StaticQuoter, error) {
	currency, err := enums.ParseCurrency(cfg.Currency)
	if err != nil {
		return nil, err
	}
	charge, err := parseAmount(cfg.DefaultCharge)
	if err != nil {
		return nil, fmt.Errorf("delivery charge: %w", err)
	}
	threshold, err := parseAmount(cfg.FreeDeliveryThreshold)
	if err != nil {
		return nil, fmt.Errorf("free delivery threshold: %w", err)
	}

	q := &StaticQuoter{
		defaults:  Terms{Currency: currency, Charge: charge, FreeDeliveryThreshold: threshold},
		overrides: make(map[string]Terms, len(cfg.PostalOverrides)),
	}
	for rawCode, rawTerms := range cfg.PostalOverrides {
		code := NormalizePostalCode(rawCode)
		if code == "" {
			return nil, fmt.Errorf("postal override with empty code")
		}
		parts := strings.Split(rawTerms, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("postal override %s: expected <charge>/<threshold>, got %q", code, rawTerms)
		}
		overrideCharge, err := parseAmount(parts[0])
		if err != nil {
			return nil, fmt.Errorf("postal override %s charge: %w", code, err)
		}
		overrideThreshold, err := parseAmount(parts[1])
		if err != nil {
			return nil, fmt.Errorf("postal override %s threshold: %w", code, err)
		}
		q.overrides[code] = Terms{Currency: currency, Charge: overrideCharge, FreeDeliveryThreshold: overrideThreshold}
	}
	return q, nil
}

func (q *StaticQuoter) Quote(ctx context.Context, postalCode string) (Terms, error) {
	if err := ctx.Err(); err != nil {
		return Terms{}, err
	}
	code := NormalizePostalCode(postalCode)
	if code == "" {
		return Terms{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery postal code is required")
	}
	terms, ok := q.overrides[code]
	if !ok {
		terms = q.defaults
	}
	terms.PostalCode = code
	return terms, nil
}

// Defaults returns the terms used for postal codes without an override.
func (q *StaticQuoter) Defaults() Terms {
	return q.defaults
}

// NormalizePostalCode strips whitespace from a postal code.
func NormalizePostalCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %s must be non-negative", amount)
	}
	return amount, nil
}
