package enums

// MutationKind labels cart mutations for logs and metrics.
type MutationKind string

const (
	MutationAddItem            MutationKind = "add_item"
	MutationUpdateQuantity     MutationKind = "update_quantity"
	MutationRemoveItem         MutationKind = "remove_item"
	MutationAddOrUpdateCombo   MutationKind = "add_or_update_combo"
	MutationRemoveCombo        MutationKind = "remove_combo"
	MutationSaveForLater       MutationKind = "save_for_later"
	MutationMoveToCart         MutationKind = "move_to_cart"
	MutationRemoveSavedItem    MutationKind = "remove_saved_item"
	MutationUpdateDeliverySlot MutationKind = "update_delivery_slot"
	MutationUpdateMessage      MutationKind = "update_message"
	MutationApplyPromo         MutationKind = "apply_promo"
	MutationRemovePromo        MutationKind = "remove_promo"
	MutationRefreshPrices      MutationKind = "refresh_prices"
	MutationClear              MutationKind = "clear"
)

// String implements fmt.Stringer.
func (m MutationKind) String() string {
	return string(m)
}
