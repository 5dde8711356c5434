package validators

import (
	"testing"

	pkgerrors "github.com/angelmondragon/cartengine/pkg/errors"
	"github.com/shopspring/decimal"
)

type samplePayload struct {
	Name     string           `json:"name" validate:"required"`
	Quantity int              `json:"quantity" validate:"min=1"`
	Price    decimal.Decimal  `json:"price" validate:"gte=0"`
	Discount *decimal.Decimal `json:"discount" validate:"omitempty,gte=0"`
}

func TestStructValid(t *testing.T) {
	t.Parallel()

	discount := decimal.NewFromInt(10)
	if err := Struct(&samplePayload{Name: "Truffle", Quantity: 1, Price: decimal.NewFromInt(800), Discount: &discount}); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestStructReportsFieldDetails(t *testing.T) {
	t.Parallel()

	negative := decimal.NewFromInt(-1)
	err := Struct(&samplePayload{Quantity: 0, Price: decimal.NewFromInt(-5), Discount: &negative})

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}

	want := map[string]string{
		"samplePayload.name":     "is required",
		"samplePayload.quantity": "must be at least 1",
		"samplePayload.price":    "must not be negative",
		"samplePayload.discount": "must not be negative",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Fatalf("details[%q] = %q, want %q", field, details[field], msg)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{in: "  Happy  ", max: 0, want: "Happy"},
		{in: "Happy", max: 3, want: "Hap"},
		{in: "जन्मदिन", max: 4, want: "जन्म"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}

	if !ExceedsLength("abcd", 3) {
		t.Fatalf("abcd exceeds 3")
	}
	if ExceedsLength(" abc ", 3) || ExceedsLength("abcdef", 0) {
		t.Fatalf("trimmed or unlimited input must not exceed")
	}
}
