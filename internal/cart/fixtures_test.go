package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/angelmondragon/cartengine/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 8, 9, 30, 0, 0, time.UTC)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	return money.Ptr(dec(value))
}

func cakeProduct() Product {
	return Product{ID: "42", Name: "Chocolate Truffle Cake", BasePrice: dec("800"), BaseWeight: "0.5kg"}
}

func oneKiloVariant() *Variant {
	return &Variant{ID: "v-1kg", Weight: "1kg", Price: dec("800"), DiscountedPrice: decPtr("750")}
}

func candlesCombo(qty int) ComboSelection {
	return ComboSelection{
		AddOnID:            "addon-candles",
		Name:               "Candles",
		Category:           "party",
		Price:              dec("100"),
		DiscountedPrice:    decPtr("80"),
		DiscountPercentage: decPtr("20"),
		Quantity:           qty,
	}
}

func candlesPayload(qty int) ComboPayload {
	return ComboPayload{
		AddOnProductID:     "addon-candles",
		Name:               "Candles",
		Price:              dec("100"),
		DiscountedPrice:    decPtr("80"),
		DiscountPercentage: decPtr("20"),
		Quantity:           qty,
	}
}

func slotOn(day int, slotID, start string) *DeliverySlot {
	return &DeliverySlot{
		Date:      time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
		SlotID:    slotID,
		StartTime: start,
	}
}

func testCartConfig() config.CartConfig {
	return config.CartConfig{
		StoreBackend:     config.StoreBackendMemory,
		MergeIdentical:   true,
		MessageMaxLength: 150,
	}
}

// flakyStore wraps MemoryStore and fails the next Save calls on demand.
type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failNext int
	saves    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: NewMemoryStore()}
}

func (f *flakyStore) FailNextSaves(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

func (f *flakyStore) Save(ctx context.Context, snapshot Snapshot) error {
	f.mu.Lock()
	f.saves++
	if f.failNext > 0 {
		f.failNext--
		f.mu.Unlock()
		return errors.New("storage offline")
	}
	f.mu.Unlock()
	return f.MemoryStore.Save(ctx, snapshot)
}

// staticValidator answers from a fixed table of codes.
type staticValidator struct {
	mu      sync.Mutex
	verdict map[string]PromoVerdict
	calls   []string
	err     error
}

func newStaticValidator() *staticValidator {
	return &staticValidator{verdict: map[string]PromoVerdict{
		"SAVE10": {Code: "SAVE10", Description: "10% off", DiscountAmount: dec("120"), DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("10")},
		"FLAT50": {Code: "FLAT50", Description: "₹50 off", DiscountAmount: dec("50"), DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50")},
	}}
}

func (v *staticValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoVerdict, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, code)
	if v.err != nil {
		return nil, v.err
	}
	verdict, ok := v.verdict[code]
	if !ok {
		return nil, InvalidPromo("promo code " + code + " is not valid")
	}
	return &verdict, nil
}

func (v *staticValidator) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

type sessionFixture struct {
	session   *Session
	store     *flakyStore
	validator *staticValidator
}

func openTestSession(t *testing.T, mutateCfg ...func(*config.CartConfig)) sessionFixture {
	t.Helper()
	cfg := testCartConfig()
	for _, fn := range mutateCfg {
		fn(&cfg)
	}
	store := newFlakyStore()
	validator := newStaticValidator()
	session, err := OpenSession(context.Background(), SessionParams{
		CartID:    "cart-test",
		Store:     store,
		Validator: validator,
		Cart:      cfg,
		Promo:     config.PromoConfig{MinCodeLength: 3, ValidationTimeout: time.Second},
		Clock:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return sessionFixture{session: session, store: store, validator: validator}
}

func addCake(t *testing.T, s *Session, qty int, opts ...func(*AddItemInput)) CartItem {
	t.Helper()
	in := AddItemInput{
		Product:  cakeProduct(),
		Variant:  oneKiloVariant(),
		Quantity: qty,
	}
	for _, opt := range opts {
		opt(&in)
	}
	item, err := s.AddItem(context.Background(), in)
	require.NoError(t, err)
	return item
}
