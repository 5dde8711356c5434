package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestResolveUnitPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields PriceFields
		want   string
	}{
		{
			name:   "list price without discount",
			fields: PriceFields{Price: d("800")},
			want:   "800",
		},
		{
			name:   "discounted price below list",
			fields: PriceFields{Price: d("800"), DiscountedPrice: Ptr(d("750"))},
			want:   "750",
		},
		{
			name:   "positive percentage wins even when discounted is not lower",
			fields: PriceFields{Price: d("100"), DiscountedPrice: Ptr(d("100")), DiscountPercentage: Ptr(d("5"))},
			want:   "100",
		},
		{
			name:   "percentage with lower discounted price",
			fields: PriceFields{Price: d("100"), DiscountedPrice: Ptr(d("80")), DiscountPercentage: Ptr(d("20"))},
			want:   "80",
		},
		{
			name:   "discounted above list without percentage is ignored",
			fields: PriceFields{Price: d("100"), DiscountedPrice: Ptr(d("120"))},
			want:   "100",
		},
		{
			name:   "zero discounted price means absent",
			fields: PriceFields{Price: d("100"), DiscountedPrice: Ptr(decimal.Zero), DiscountPercentage: Ptr(d("10"))},
			want:   "100",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveUnitPrice(tt.fields); !got.Equal(d(tt.want)) {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestLineTotalAndSum(t *testing.T) {
	t.Parallel()

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{name: "line total", got: LineTotal(d("750"), 2), want: "1500"},
		{name: "sum", got: Sum(d("1500"), d("240")), want: "1740"},
		{name: "empty sum", got: Sum(), want: "0"},
		{name: "clamp negative", got: ClampZero(d("-10")), want: "0"},
		{name: "clamp positive", got: ClampZero(d("10")), want: "10"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Fatalf("%s: got %s want %s", c.name, c.got, c.want)
		}
	}
}

func TestPtrHelpers(t *testing.T) {
	t.Parallel()

	src := Ptr(d("12.5"))
	cp := CopyPtr(src)
	if cp == nil || cp == src {
		t.Fatalf("expected a distinct copy, got %p for %p", cp, src)
	}
	if !EqualPtr(src, cp) || !EqualPtr(nil, nil) {
		t.Fatalf("expected equal pointers to compare equal")
	}
	if EqualPtr(src, nil) {
		t.Fatalf("value and nil must differ")
	}
	if CopyPtr(nil) != nil {
		t.Fatalf("copy of nil must be nil")
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		iso    string
		want   string
	}{
		{amount: "1740", iso: "INR", want: "₹1,740.00"},
		{amount: "80.5", iso: "inr", want: "₹80.50"},
		{amount: "0", iso: "INR", want: "₹0.00"},
		{amount: "999.999", iso: "INR", want: "₹1,000.00"},
		{amount: "1234567", iso: "INR", want: "₹12,34,567.00"},
		{amount: "12345678901234.56", iso: "INR", want: "₹1,23,45,67,89,01,234.56"},
		{amount: "12345678901234.56", iso: "USD", want: "$12,345,678,901,234.56"},
		{amount: "9007199254740993.01", iso: "USD", want: "$9,007,199,254,740,993.01"},
		{amount: "-20", iso: "USD", want: "-$20.00"},
		{amount: "1500.25", iso: "GBP", want: "£1,500.25"},
		{amount: "1500", iso: "JPY", want: "JPY 1,500.00"},
	}
	for _, tt := range tests {
		got, err := Format(d(tt.amount), tt.iso)
		if err != nil {
			t.Fatalf("Format(%s, %s): %v", tt.amount, tt.iso, err)
		}
		if got != tt.want {
			t.Fatalf("Format(%s, %s) = %q, want %q", tt.amount, tt.iso, got, tt.want)
		}
	}

	if _, err := Format(d("1"), "NOPE"); err == nil {
		t.Fatalf("expected error for unknown currency")
	}
	if got := MustFormat(d("5"), "NOPE"); got != "5.00" {
		t.Fatalf("MustFormat fallback = %q", got)
	}
}
