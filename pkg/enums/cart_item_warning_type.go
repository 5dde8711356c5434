package enums

import "fmt"

// CartItemWarningType enumerates warnings raised against cart lines.
type CartItemWarningType string

const (
	CartItemWarningTypePriceChanged CartItemWarningType = "price_changed"
	CartItemWarningTypeNotAvailable CartItemWarningType = "not_available"
	CartItemWarningTypeAddOnRemoved CartItemWarningType = "add_on_removed"
)

var validCartItemWarningTypes = []CartItemWarningType{
	CartItemWarningTypePriceChanged,
	CartItemWarningTypeNotAvailable,
	CartItemWarningTypeAddOnRemoved,
}

// String implements fmt.Stringer.
func (c CartItemWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartItemWarningType) IsValid() bool {
	for _, candidate := range validCartItemWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartItemWarningType converts raw input into a CartItemWarningType.
func ParseCartItemWarningType(value string) (CartItemWarningType, error) {
	for _, candidate := range validCartItemWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item warning type %q", value)
}
