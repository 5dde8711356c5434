package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealLimitMessage is returned when a deal line would exceed one unit.
const DealLimitMessage = "deal items are limited to 1"

// SessionParams wires a cart session to its collaborators.
type SessionParams struct {
	CartID    string
	Store     SnapshotStore
	Validator PromoValidator
	Catalog   CatalogLoader
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics
	Cart      config.CartConfig
	Promo     config.PromoConfig
	Clock     func() time.Time
}

// Session owns the cart state of one shopper. Every mutation recomputes the
// touched totals, persists the snapshot and reverts to the previous state when
// persistence fails.
type Session struct {
	mu        sync.Mutex
	cartID    string
	state     Snapshot
	store     SnapshotStore
	validator PromoValidator
	catalog   CatalogLoader
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	cartCfg   config.CartConfig
	promoCfg  config.PromoConfig
	now       func() time.Time
}

// OpenSession loads the cart snapshot, or starts an empty cart when none exists.
func OpenSession(ctx context.Context, params SessionParams) (*Session, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Validator == nil {
		return nil, fmt.Errorf("promo validator required")
	}
	cartID := strings.TrimSpace(params.CartID)
	if cartID == "" {
		cartID = uuid.NewString()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}

	s := &Session{
		cartID:    cartID,
		store:     params.Store,
		validator: params.Validator,
		catalog:   params.Catalog,
		logg:      logg,
		metrics:   params.Metrics,
		cartCfg:   params.Cart,
		promoCfg:  params.Promo,
		now:       now,
	}

	ctx = logg.WithCartID(ctx, cartID)
	snapshot, err := params.Store.Load(ctx, cartID)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		s.state = Snapshot{CartID: cartID}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	default:
		s.state = snapshot.Clone()
		s.state.CartID = cartID
		s.heal(ctx)
	}
	return s, nil
}

// heal drops state that can never be produced by a valid mutation sequence.
func (s *Session) heal(ctx context.Context) {
	if s.state.Promo.IsCorrupt() {
		s.logg.Warn(s.logg.WithField(ctx, "promo_code", s.state.Promo.Code), "discarding corrupted applied promo")
		s.state.Promo = nil
	}
	s.state.Items = healLines(ctx, s.logg, s.state.Items)
	s.state.SavedItems = healLines(ctx, s.logg, s.state.SavedItems)
}

func healLines(ctx context.Context, logg *logger.Logger, items []CartItem) []CartItem {
	out := items[:0]
	for _, item := range items {
		if item.Quantity < 1 {
			logg.Warn(logg.WithItemID(ctx, item.ID.String()), "dropping persisted line with non-positive quantity")
			continue
		}
		if item.IsDealItem && item.Quantity > 1 {
			item.Quantity = 1
		}
		combos := item.Combos[:0]
		for _, combo := range item.Combos {
			if combo.Quantity > 0 {
				combos = append(combos, combo)
			}
		}
		item.Combos = combos
		if len(item.Combos) == 0 {
			item.Combos = nil
		}
		recompute(&item)
		out = append(out, item)
	}
	return out
}

// mutate applies fn to the state and persists the result. fn errors and
// persistence failures leave the state exactly as it was before the call.
func (s *Session) mutate(ctx context.Context, kind enums.MutationKind, fn func(state *Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	ctx = s.logg.WithMutation(s.logg.WithCartID(ctx, s.cartID), kind.String())
	previous := s.state.Clone()

	if err := fn(&s.state); err != nil {
		s.state = previous
		s.metrics.ObserveMutation(kind.String(), metrics.OutcomeRejected, s.now().Sub(started))
		return err
	}

	s.state.Version = previous.Version + 1
	s.state.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, s.state.Clone()); err != nil {
		s.state = previous
		s.metrics.IncRollback(kind.String())
		s.metrics.ObserveMutation(kind.String(), metrics.OutcomeRolledBack, s.now().Sub(started))
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
		s.logg.Error(s.logg.WithField(ctx, "error_dump", pkgerrors.Dump(wrapped)), "cart persistence failed, mutation rolled back", err)
		return wrapped
	}

	s.metrics.ObserveMutation(kind.String(), metrics.OutcomeSuccess, s.now().Sub(started))
	return nil
}

func (s *Session) CartID() string {
	return s.cartID
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Items returns the lines that count toward totals.
func (s *Session) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.state.Items)
}

// SavedItems returns the saved-for-later lines.
func (s *Session) SavedItems() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.state.SavedItems)
}

// Item looks up an active line.
func (s *Session) Item(id uuid.UUID) (CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := findItem(s.state.Items, id)
	if idx < 0 {
		return CartItem{}, false
	}
	return s.state.Items[idx].Clone(), true
}

// AppliedPromo returns a copy of the applied promo, or nil.
func (s *Session) AppliedPromo() *AppliedPromo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Promo.clone()
}

// PromoStatus reports applied when a promo is held, none otherwise.
func (s *Session) PromoStatus() enums.PromoStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Promo != nil {
		return enums.PromoStatusApplied
	}
	return enums.PromoStatusNone
}

// RegularSubtotal is the promo validation base.
func (s *Session) RegularSubtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RegularSubtotal(s.state.Items)
}

// Summary computes the order summary from the current state.
func (s *Session) Summary(deliveryCharge, freeDeliveryThreshold decimal.Decimal) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeSummary(s.state.Items, s.state.Promo, deliveryCharge, freeDeliveryThreshold)
}

func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items) == 0
}

func itemNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
		WithDetails(map[string]any{"item_id": id.String()})
}

func dealLimitError(productID string) error {
	return pkgerrors.New(pkgerrors.CodeDomainLimit, DealLimitMessage).
		WithDetails(map[string]any{"product_id": productID})
}
