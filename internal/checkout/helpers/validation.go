package helpers

import (
	"fmt"

	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/angelmondragon/cartengine/internal/delivery"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"go.uber.org/multierr"
)

// ValidateDeliveryDetails checks that checkout has a postal code and that every
// line carries a dated delivery slot. All problems are reported together.
func ValidateDeliveryDetails(items []cart.CartItem, postalCode string) error {
	var problems error
	if delivery.NormalizePostalCode(postalCode) == "" {
		problems = multierr.Append(problems, fmt.Errorf("delivery postal code is required"))
	}
	for idx, item := range items {
		switch {
		case item.DeliverySlot == nil:
			problems = multierr.Append(problems, fmt.Errorf("item %d (%s) has no delivery slot", idx+1, item.Product.Name))
		case item.DeliverySlot.Date.IsZero():
			problems = multierr.Append(problems, fmt.Errorf("item %d (%s) has no delivery date", idx+1, item.Product.Name))
		}
	}
	if problems == nil {
		return nil
	}

	errs := multierr.Errors(problems)
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "delivery details missing").
		WithDetails(map[string]any{"problems": messages})
}
