package enums

import "fmt"

// VariationAxis names a configuration dimension compared between cart lines
// that share a base product.
type VariationAxis string

const (
	VariationAxisDeliverySlot VariationAxis = "delivery_slot"
	VariationAxisCombos       VariationAxis = "combos"
	VariationAxisFlavor       VariationAxis = "flavor"
	VariationAxisTier         VariationAxis = "tier"
	VariationAxisWeight       VariationAxis = "weight"
)

// VariationAxes lists every axis in reporting order.
var VariationAxes = []VariationAxis{
	VariationAxisDeliverySlot,
	VariationAxisCombos,
	VariationAxisFlavor,
	VariationAxisTier,
	VariationAxisWeight,
}

var variationAxisLabels = map[VariationAxis]string{
	VariationAxisDeliverySlot: "Delivery Time Slot",
	VariationAxisCombos:       "Add-ons/Combos",
	VariationAxisFlavor:       "Flavor",
	VariationAxisTier:         "Tier",
	VariationAxisWeight:       "Weight/Variant",
}

// String implements fmt.Stringer.
func (v VariationAxis) String() string {
	return string(v)
}

// Label is the shopper-facing name of the axis.
func (v VariationAxis) Label() string {
	if label, ok := variationAxisLabels[v]; ok {
		return label
	}
	return string(v)
}

// IsValid reports whether the value is a known VariationAxis.
func (v VariationAxis) IsValid() bool {
	_, ok := variationAxisLabels[v]
	return ok
}

// ParseVariationAxis converts raw input into a VariationAxis.
func ParseVariationAxis(value string) (VariationAxis, error) {
	for _, candidate := range VariationAxes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variation axis %q", value)
}
