// Package digits canonicalizes numeric-looking text into plain ASCII digit
// strings. Registration and login input arrives from web forms that freely
// mix ASCII, Persian and Arabic-Indic digits with separators, so every
// credential field passes through Normalize before validation.
package digits

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	persianZero = '۰' // U+06F0
	arabicZero  = '٠' // U+0660
)

// Normalize maps Persian and Arabic-Indic digits to ASCII and strips
// whitespace, zero-width marks, hyphens, underscores and parentheses.
// Unicode compatibility normalization (NFKC) runs first so visually
// equivalent code points (full-width digits, superscripts) collapse.
// Normalize never fails; malformed input yields a string that downstream
// validation rejects.
func Normalize(s string) string {
	folded := norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= persianZero && r <= persianZero+9:
			b.WriteRune('0' + (r - persianZero))
		case r >= arabicZero && r <= arabicZero+9:
			b.WriteRune('0' + (r - arabicZero))
		case unicode.IsSpace(r) || r == '‌' || r == '‏' ||
			r == '-' || r == '_' || r == '(' || r == ')':
			// formatting noise, dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsASCIIDigits reports whether s is non-empty and contains only 0-9.
func IsASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ToPersian renders an ASCII digit string with Persian digit glyphs.
// Non-digit runes pass through unchanged. Used for user-facing messages.
func ToPersian(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(persianZero + (r - '0'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
