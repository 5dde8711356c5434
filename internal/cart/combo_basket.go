package cart

import (
	"strings"

	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/validators"
	"github.com/shopspring/decimal"
)

// ComboBasket is the working set of add-on selections for one cart line. A
// basket is owned by a single edit and committed through the Session; it is
// never shared between lines.
type ComboBasket struct {
	selections []ComboSelection
}

// NewComboBasket seeds a basket with a copy of existing selections.
func NewComboBasket(existing []ComboSelection) *ComboBasket {
	basket := &ComboBasket{}
	for _, sel := range existing {
		basket.selections = append(basket.selections, sel.clone())
	}
	return basket
}

// Put adds or replaces the selection for its add-on. A quantity below one
// removes the add-on instead.
func (b *ComboBasket) Put(sel ComboSelection) error {
	sel.AddOnID = strings.TrimSpace(sel.AddOnID)
	if sel.AddOnID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "add-on id is required")
	}
	if sel.Quantity < 1 {
		b.Remove(sel.AddOnID)
		return nil
	}
	if err := validators.Struct(sel); err != nil {
		return err
	}
	for i := range b.selections {
		if b.selections[i].AddOnID == sel.AddOnID {
			b.selections[i] = sel.clone()
			return nil
		}
	}
	b.selections = append(b.selections, sel.clone())
	return nil
}

// Remove drops the add-on and reports whether it was present.
func (b *ComboBasket) Remove(addOnID string) bool {
	for i := range b.selections {
		if b.selections[i].AddOnID == addOnID {
			b.selections = append(b.selections[:i], b.selections[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether the add-on is selected.
func (b *ComboBasket) Has(addOnID string) bool {
	for _, sel := range b.selections {
		if sel.AddOnID == addOnID {
			return true
		}
	}
	return false
}

// Selections returns a copy of the current selections.
func (b *ComboBasket) Selections() []ComboSelection {
	if len(b.selections) == 0 {
		return nil
	}
	out := make([]ComboSelection, len(b.selections))
	for i, sel := range b.selections {
		out[i] = sel.clone()
	}
	return out
}

func (b *ComboBasket) Len() int {
	return len(b.selections)
}

// Total is the combo total of the basket.
func (b *ComboBasket) Total() decimal.Decimal {
	return ComboTotal(b.selections)
}
