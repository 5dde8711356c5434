package promos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/cartengine/pkg/db/models"
	"github.com/angelmondragon/cartengine/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var now = time.Date(2026, 5, 8, 9, 30, 0, 0, time.UTC)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func newPromoDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.PromoCode{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

func seed(t *testing.T, repo *Repository, promos ...models.PromoCode) {
	t.Helper()
	for i := range promos {
		if _, err := repo.Create(context.Background(), &promos[i]); err != nil {
			t.Fatalf("seed %s: %v", promos[i].Code, err)
		}
	}
}

func newTestValidator(t *testing.T, codes codeFinder, logg *logger.Logger) *Validator {
	t.Helper()
	validator, err := NewValidator(codes, enums.CurrencyINR, logg)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	validator.now = func() time.Time { return now }
	return validator
}

func TestRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(newPromoDB(t, "promo_create"))

	created, err := repo.Create(ctx, &models.PromoCode{
		Code:          " save10 ",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("10"),
		Active:        true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Code != "SAVE10" {
		t.Fatalf("expected normalized code, got %q", created.Code)
	}

	found, err := repo.FindByCode(ctx, "Save10")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID || !found.DiscountValue.Equal(dec("10")) {
		t.Fatalf("unexpected promo %+v", found)
	}

	_, err = repo.Create(ctx, &models.PromoCode{Code: "SAVE10", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("5")})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate code, got %v", err)
	}

	if _, err := repo.FindByCode(ctx, "MISSING"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepositoryKeepsInactiveFlag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(newPromoDB(t, "promo_inactive"))
	seed(t, repo, models.PromoCode{Code: "PAUSED", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("100"), Active: false})

	found, err := repo.FindByCode(ctx, "PAUSED")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Active {
		t.Fatalf("promo created inactive was loaded as active")
	}

	validator := newTestValidator(t, repo, nil)
	_, err = validator.Validate(ctx, "paused", dec("800"))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInvalidPromo {
		t.Fatalf("expected invalid promo, got %v", err)
	}
	if coded.Message() != "promo code PAUSED is no longer active" {
		t.Fatalf("unexpected reason %q", coded.Message())
	}
}

func TestRepositoryRejectsBadDefinitions(t *testing.T) {
	t.Parallel()
	repo := NewRepository(newPromoDB(t, "promo_definitions"))

	cases := map[string]models.PromoCode{
		"blank code":   {Code: " ", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("5")},
		"unknown type": {Code: "X1", DiscountType: "bogo", DiscountValue: dec("5")},
		"zero value":   {Code: "X2", DiscountType: enums.DiscountTypeFlat, DiscountValue: decimal.Zero},
		"over 100":     {Code: "X3", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("120")},
		"zero cap":     {Code: "X4", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("10"), MaxDiscount: &decimal.Zero},
	}
	for name, promo := range cases {
		name, promo := name, promo
		t.Run(name, func(t *testing.T) {
			if _, err := repo.Create(context.Background(), &promo); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRepositoryDeactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(newPromoDB(t, "promo_deactivate"))
	seed(t, repo, models.PromoCode{Code: "FLAT50", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50"), Active: true})

	if err := repo.Deactivate(ctx, "flat50"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	found, err := repo.FindByCode(ctx, "FLAT50")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Active {
		t.Fatalf("expected promo to be inactive")
	}

	if err := repo.Deactivate(ctx, "NOPE"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidatorVerdicts(t *testing.T) {
	t.Parallel()
	repo := NewRepository(newPromoDB(t, "promo_verdicts"))
	expired := now.Add(-time.Hour)
	later := now.Add(24 * time.Hour)
	seed(t, repo,
		models.PromoCode{Code: "SAVE10", Description: "10% off", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("10"), Active: true},
		models.PromoCode{Code: "CAP20", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("20"), MaxDiscount: decPtr("100"), Active: true},
		models.PromoCode{Code: "FLAT50", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50"), Active: true},
		models.PromoCode{Code: "BIG500", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("500"), MinSubtotal: dec("1000"), Active: true},
		models.PromoCode{Code: "OLD", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50"), Active: true, ExpiresAt: &expired},
		models.PromoCode{Code: "SOON", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50"), Active: true, StartsAt: &later},
		models.PromoCode{Code: "OFF", DiscountType: enums.DiscountTypeFlat, DiscountValue: dec("50")},
	)
	validator := newTestValidator(t, repo, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		code       string
		subtotal   string
		wantAmount string
		wantReason string
	}{
		{name: "percentage", code: "save10", subtotal: "1200", wantAmount: "120"},
		{name: "percentage capped", code: "CAP20", subtotal: "1200", wantAmount: "100"},
		{name: "flat", code: "FLAT50", subtotal: "800", wantAmount: "50"},
		{name: "flat limited to subtotal", code: "FLAT50", subtotal: "30", wantAmount: "30"},
		{name: "minimum subtotal", code: "BIG500", subtotal: "999", wantReason: "add items worth ₹1,000.00 to use BIG500"},
		{name: "unknown", code: "nope", subtotal: "800", wantReason: "promo code NOPE is not valid"},
		{name: "expired", code: "OLD", subtotal: "800", wantReason: "promo code OLD has expired"},
		{name: "not started", code: "SOON", subtotal: "800", wantReason: "promo code SOON is not active yet"},
		{name: "inactive", code: "OFF", subtotal: "800", wantReason: "promo code OFF is no longer active"},
		{name: "empty cart", code: "SAVE10", subtotal: "0", wantReason: "promo code does not apply to this cart"},
		{name: "blank", code: "  ", subtotal: "800", wantReason: "enter a promo code"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := validator.Validate(ctx, tc.code, dec(tc.subtotal))
			if tc.wantReason != "" {
				coded := pkgerrors.As(err)
				if coded == nil || coded.Code() != pkgerrors.CodeInvalidPromo {
					t.Fatalf("expected invalid promo, got %v", err)
				}
				if coded.Message() != tc.wantReason {
					t.Fatalf("expected reason %q, got %q", tc.wantReason, coded.Message())
				}
				if verdict != nil {
					t.Fatalf("expected no verdict, got %+v", verdict)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if got := verdict.DiscountAmount.String(); got != tc.wantAmount {
				t.Fatalf("expected discount %s, got %s", tc.wantAmount, got)
			}
		})
	}
}

func TestValidatorSurfacesStoreFailures(t *testing.T) {
	t.Parallel()
	conn := newPromoDB(t, "promo_closed")
	var buf bytes.Buffer
	validator := newTestValidator(t, NewRepository(conn), logger.New(logger.Options{ServiceName: "promos-test", Output: &buf}))

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = validator.Validate(context.Background(), "save10", dec("800"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	var entry struct {
		Message   string         `json:"message"`
		PromoCode string         `json:"promo_code"`
		ErrorDump map[string]any `json:"error_dump"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry.Message != "promo lookup failed" || entry.PromoCode != "SAVE10" {
		t.Fatalf("unexpected log entry %+v", entry)
	}
	if entry.ErrorDump["code"] != string(pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code in dump, got %v", entry.ErrorDump)
	}
}

func TestNewValidatorRequiresDependencies(t *testing.T) {
	t.Parallel()
	if _, err := NewValidator(nil, enums.CurrencyINR, nil); err == nil {
		t.Fatalf("expected error without a code source")
	}
	if _, err := NewValidator(NewRepository(nil), enums.Currency("XYZ"), nil); err == nil {
		t.Fatalf("expected error for unsupported currency")
	}
}
