package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/angelmondragon/cartengine/pkg/enums"
)

const slotDateLayout = "2006-01-02"

// DifferingAxes lists the variation axes on which two lines differ, in the
// fixed axis order.
func DifferingAxes(a, b CartItem) []enums.VariationAxis {
	var out []enums.VariationAxis
	for _, axis := range enums.VariationAxes {
		if !sameOnAxis(axis, a, b) {
			out = append(out, axis)
		}
	}
	return out
}

// IsIdenticalLine reports whether b would duplicate a exactly: same product, no
// differing axis, same message, and neither is a deal line.
func IsIdenticalLine(a, b CartItem) bool {
	if a.IsDealItem || b.IsDealItem {
		return false
	}
	if a.Product.ID != b.Product.ID || a.Message != b.Message {
		return false
	}
	return len(DifferingAxes(a, b)) == 0
}

func sameOnAxis(axis enums.VariationAxis, a, b CartItem) bool {
	switch axis {
	case enums.VariationAxisDeliverySlot:
		return sameSlot(a.DeliverySlot, b.DeliverySlot)
	case enums.VariationAxisCombos:
		return ComboKey(a.Combos) == ComboKey(b.Combos)
	case enums.VariationAxisFlavor:
		return sameFlavor(a.Flavor, b.Flavor)
	case enums.VariationAxisTier:
		return a.Tier == b.Tier
	case enums.VariationAxisWeight:
		return sameVariant(a.Variant, b.Variant)
	default:
		return true
	}
}

func sameSlot(a, b *DeliverySlot) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if slotDate(a) != slotDate(b) {
		return false
	}
	if a.SlotID != "" && b.SlotID != "" {
		return a.SlotID == b.SlotID
	}
	return a.StartTime == b.StartTime
}

func slotDate(slot *DeliverySlot) string {
	if slot.Date.IsZero() {
		return ""
	}
	return slot.Date.Format(slotDateLayout)
}

// ComboKey is the order-independent identity of a combo list.
func ComboKey(combos []ComboSelection) string {
	if len(combos) == 0 {
		return ""
	}
	keys := make([]string, 0, len(combos))
	for _, combo := range combos {
		keys = append(keys, combo.AddOnID+":"+strconv.Itoa(combo.Quantity))
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func sameFlavor(a, b *Flavor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.Name == b.Name
}

func sameVariant(a, b *Variant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.Weight == b.Weight
}
