package checkout

import (
	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/angelmondragon/cartengine/internal/checkout/helpers"
	"github.com/angelmondragon/cartengine/pkg/enums"
)

// DuplicateGroup is a base product present on more than one regular line.
type DuplicateGroup struct {
	ProductID     string                `json:"product_id"`
	ProductName   string                `json:"product_name"`
	Items         []cart.CartItem       `json:"items"`
	Differences   []enums.VariationAxis `json:"differences"`
	HasVariations bool                  `json:"has_variations"`
}

// DifferenceLabels returns the shopper-facing names of the differing axes.
func (g DuplicateGroup) DifferenceLabels() []string {
	labels := make([]string, 0, len(g.Differences))
	for _, axis := range g.Differences {
		labels = append(labels, axis.Label())
	}
	return labels
}

// DetectDuplicateGroups finds products that appear on two or more regular
// lines. Deal lines never participate. Each member is compared against the
// first line of its group and the differing axes are unioned in axis order.
func DetectDuplicateGroups(items []cart.CartItem) []DuplicateGroup {
	regular, _ := helpers.PartitionDealItems(items)
	var out []DuplicateGroup
	for _, group := range helpers.GroupItemsByProduct(regular) {
		if len(group.Items) < 2 {
			continue
		}
		first := group.Items[0]
		seen := make(map[enums.VariationAxis]bool, len(enums.VariationAxes))
		for _, other := range group.Items[1:] {
			for _, axis := range cart.DifferingAxes(first, other) {
				seen[axis] = true
			}
		}
		var differences []enums.VariationAxis
		for _, axis := range enums.VariationAxes {
			if seen[axis] {
				differences = append(differences, axis)
			}
		}
		out = append(out, DuplicateGroup{
			ProductID:     group.ProductID,
			ProductName:   group.ProductName,
			Items:         group.Items,
			Differences:   differences,
			HasVariations: len(differences) > 0,
		})
	}
	return out
}
