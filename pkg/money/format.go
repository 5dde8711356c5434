package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

var symbols = map[currency.Unit]string{
	currency.INR: "₹",
	currency.USD: "$",
	currency.EUR: "€",
	currency.GBP: "£",
}

var locales = map[currency.Unit]language.Tag{
	currency.INR: language.MustParse("en-IN"),
	currency.USD: language.AmericanEnglish,
	currency.GBP: language.BritishEnglish,
}

// Format renders an amount with the currency symbol and locale grouping, e.g.
// ₹1,740.00 or ₹12,34,567.00. Unknown symbols fall back to the ISO code as a
// prefix. Digits come from the decimal itself so large amounts stay exact.
func Format(amount decimal.Decimal, isoCode string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(isoCode)))
	if err != nil {
		return "", fmt.Errorf("parse currency %q: %w", isoCode, err)
	}

	tag, ok := locales[unit]
	if !ok {
		tag = language.English
	}

	rounded := amount.Round(2)
	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	value := groupDigits(whole, usesLakhGrouping(tag)) + "." + frac

	prefix, ok := symbols[unit]
	if !ok {
		prefix = unit.String() + " "
	}
	if rounded.IsNegative() {
		return "-" + prefix + value, nil
	}
	return prefix + value, nil
}

// MustFormat is Format for callers holding a currency that was validated at load.
func MustFormat(amount decimal.Decimal, isoCode string) string {
	out, err := Format(amount, isoCode)
	if err != nil {
		return amount.StringFixed(2)
	}
	return out
}

// usesLakhGrouping reports whether the locale groups the last three digits and
// then pairs, as Indian English does.
func usesLakhGrouping(tag language.Tag) bool {
	region, _ := tag.Region()
	return region.String() == "IN"
}

func groupDigits(digits string, lakh bool) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	size := 3
	if lakh {
		size = 2
	}

	var groups []string
	for len(head) > size {
		groups = append([]string{head[len(head)-size:]}, groups...)
		head = head[:len(head)-size]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(append(groups, tail), ",")
}
