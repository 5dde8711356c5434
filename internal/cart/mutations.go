package cart

import (
	"context"
	"strings"

	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/google/uuid"
)

// AddItem places a new line in the cart. With merging enabled, a line identical
// on every variation axis and message absorbs the quantity instead.
func (s *Session) AddItem(ctx context.Context, in AddItemInput) (CartItem, error) {
	normalized, combos, err := in.normalize(s.cartCfg.MessageMaxLength)
	if err != nil {
		return CartItem{}, err
	}
	if normalized.IsDealItem && normalized.Quantity > 1 {
		return CartItem{}, dealLimitError(normalized.Product.ID)
	}

	line := CartItem{
		ID:           uuid.New(),
		Product:      normalized.Product,
		Variant:      normalized.Variant,
		Flavor:       normalized.Flavor,
		Tier:         normalized.Tier,
		Combos:       combos,
		DeliverySlot: normalized.DeliverySlot,
		Message:      normalized.Message,
		Quantity:     normalized.Quantity,
		IsDealItem:   normalized.IsDealItem,
		DealPrice:    money.CopyPtr(normalized.DealPrice),
		AddedAt:      s.now().UTC(),
	}
	line = line.Clone()

	var result CartItem
	err = s.mutate(ctx, enums.MutationAddItem, func(state *Snapshot) error {
		placed, err := s.placeLine(state, line)
		if err != nil {
			return err
		}
		result = placed
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return result, nil
}

// placeLine appends the line, or merges it into an identical one.
func (s *Session) placeLine(state *Snapshot, line CartItem) (CartItem, error) {
	if line.IsDealItem {
		for _, existing := range state.Items {
			if existing.IsDealItem && existing.Product.ID == line.Product.ID {
				return CartItem{}, dealLimitError(line.Product.ID)
			}
		}
	}
	if s.cartCfg.MergeIdentical {
		for i := range state.Items {
			if IsIdenticalLine(state.Items[i], line) {
				state.Items[i].Quantity += line.Quantity
				recompute(&state.Items[i])
				return state.Items[i].Clone(), nil
			}
		}
	}
	line.Warnings = nil
	recompute(&line)
	state.Items = append(state.Items, line)
	return line.Clone(), nil
}

// UpdateQuantity sets a line's quantity. A quantity below one removes the line
// and the returned item is nil.
func (s *Session) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*CartItem, error) {
	var result *CartItem
	err := s.mutate(ctx, enums.MutationUpdateQuantity, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		if quantity < 1 {
			state.Items = removeAt(state.Items, idx)
			return nil
		}
		item := &state.Items[idx]
		if item.IsDealItem && quantity > 1 {
			return dealLimitError(item.Product.ID)
		}
		item.Quantity = quantity
		recompute(item)
		out := item.Clone()
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes an active line.
func (s *Session) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return s.mutate(ctx, enums.MutationRemoveItem, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		state.Items = removeAt(state.Items, idx)
		return nil
	})
}

// AddOrUpdateCombo puts one add-on on a line. A quantity below one removes it.
func (s *Session) AddOrUpdateCombo(ctx context.Context, itemID uuid.UUID, payload ComboPayload) (CartItem, error) {
	sel, err := NormalizeCombo(payload)
	if err != nil {
		return CartItem{}, err
	}
	return s.editCombos(ctx, enums.MutationAddOrUpdateCombo, itemID, func(basket *ComboBasket) error {
		if sel.Quantity < 1 && !basket.Has(sel.AddOnID) {
			return comboNotFound(itemID, sel.AddOnID)
		}
		return basket.Put(sel)
	})
}

// RemoveCombo drops an add-on from a line.
func (s *Session) RemoveCombo(ctx context.Context, itemID uuid.UUID, addOnID string) (CartItem, error) {
	addOnID = strings.TrimSpace(addOnID)
	return s.editCombos(ctx, enums.MutationRemoveCombo, itemID, func(basket *ComboBasket) error {
		if !basket.Remove(addOnID) {
			return comboNotFound(itemID, addOnID)
		}
		return nil
	})
}

// EditCombos hands the line's add-ons to fn as a basket and commits the basket
// back as one mutation.
func (s *Session) EditCombos(ctx context.Context, itemID uuid.UUID, fn func(*ComboBasket) error) (CartItem, error) {
	return s.editCombos(ctx, enums.MutationAddOrUpdateCombo, itemID, fn)
}

func (s *Session) editCombos(ctx context.Context, kind enums.MutationKind, itemID uuid.UUID, fn func(*ComboBasket) error) (CartItem, error) {
	var result CartItem
	err := s.mutate(ctx, kind, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		item := &state.Items[idx]
		basket := NewComboBasket(item.Combos)
		if err := fn(basket); err != nil {
			return err
		}
		item.Combos = basket.Selections()
		recompute(item)
		result = item.Clone()
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return result, nil
}

// SaveForLater moves a line out of the totals into the saved list.
func (s *Session) SaveForLater(ctx context.Context, itemID uuid.UUID) error {
	return s.mutate(ctx, enums.MutationSaveForLater, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		item := state.Items[idx]
		state.Items = removeAt(state.Items, idx)
		state.SavedItems = append(state.SavedItems, item)
		return nil
	})
}

// MoveToCart brings a saved line back into the cart under the same placement
// rules as AddItem.
func (s *Session) MoveToCart(ctx context.Context, itemID uuid.UUID) (CartItem, error) {
	var result CartItem
	err := s.mutate(ctx, enums.MutationMoveToCart, func(state *Snapshot) error {
		idx := findItem(state.SavedItems, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		item := state.SavedItems[idx]
		state.SavedItems = removeAt(state.SavedItems, idx)
		placed, err := s.placeLine(state, item)
		if err != nil {
			return err
		}
		result = placed
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return result, nil
}

// RemoveSavedItem deletes a saved line.
func (s *Session) RemoveSavedItem(ctx context.Context, itemID uuid.UUID) error {
	return s.mutate(ctx, enums.MutationRemoveSavedItem, func(state *Snapshot) error {
		idx := findItem(state.SavedItems, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		state.SavedItems = removeAt(state.SavedItems, idx)
		return nil
	})
}

// UpdateDeliverySlot replaces or clears (nil) a line's delivery slot.
func (s *Session) UpdateDeliverySlot(ctx context.Context, itemID uuid.UUID, slot *DeliverySlot) (CartItem, error) {
	var result CartItem
	err := s.mutate(ctx, enums.MutationUpdateDeliverySlot, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		if slot == nil {
			state.Items[idx].DeliverySlot = nil
		} else {
			copied := *slot
			state.Items[idx].DeliverySlot = &copied
		}
		result = state.Items[idx].Clone()
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return result, nil
}

// UpdateMessage sets the free-text message of a line.
func (s *Session) UpdateMessage(ctx context.Context, itemID uuid.UUID, message string) (CartItem, error) {
	normalized, err := normalizeMessage(message, s.cartCfg.MessageMaxLength)
	if err != nil {
		return CartItem{}, err
	}
	var result CartItem
	err = s.mutate(ctx, enums.MutationUpdateMessage, func(state *Snapshot) error {
		idx := findItem(state.Items, itemID)
		if idx < 0 {
			return itemNotFound(itemID)
		}
		state.Items[idx].Message = normalized
		result = state.Items[idx].Clone()
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return result, nil
}

// Clear empties the cart after a successful checkout. Saved lines are kept.
func (s *Session) Clear(ctx context.Context) error {
	return s.mutate(ctx, enums.MutationClear, func(state *Snapshot) error {
		state.Items = nil
		state.Promo = nil
		return nil
	})
}

func comboNotFound(itemID uuid.UUID, addOnID string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "add-on not found on cart item").
		WithDetails(map[string]any{"item_id": itemID.String(), "add_on_id": addOnID})
}

func removeAt(items []CartItem, idx int) []CartItem {
	out := make([]CartItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
