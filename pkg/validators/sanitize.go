package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims the input and truncates it to maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return string([]rune(trimmed)[:maxLen])
	}
	return trimmed
}

// ExceedsLength reports whether the trimmed input is longer than maxLen runes.
func ExceedsLength(input string, maxLen int) bool {
	return maxLen > 0 && utf8.RuneCountInString(strings.TrimSpace(input)) > maxLen
}
