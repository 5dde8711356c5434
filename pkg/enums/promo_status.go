package enums

import "fmt"

// PromoStatus tracks the promo input lifecycle.
type PromoStatus string

const (
	PromoStatusNone       PromoStatus = "none"
	PromoStatusValidating PromoStatus = "validating"
	PromoStatusValid      PromoStatus = "valid"
	PromoStatusInvalid    PromoStatus = "invalid"
	PromoStatusApplied    PromoStatus = "applied"
)

var validPromoStatuses = []PromoStatus{
	PromoStatusNone,
	PromoStatusValidating,
	PromoStatusValid,
	PromoStatusInvalid,
	PromoStatusApplied,
}

// String implements fmt.Stringer.
func (p PromoStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromoStatus.
func (p PromoStatus) IsValid() bool {
	for _, candidate := range validPromoStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromoStatus converts raw input into a PromoStatus.
func ParsePromoStatus(value string) (PromoStatus, error) {
	for _, candidate := range validPromoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promo status %q", value)
}
