// Package textnorm canonicalizes free text so column names and query
// fragments compare case-, punctuation- and subscript-insensitively.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"
)

// subscriptZero is U+2080 SUBSCRIPT ZERO; ₀..₉ are contiguous.
const subscriptZero = '₀'

// Normalize maps s to lowercase ASCII letters and digits only. Subscript
// digits are translated to their ASCII form before anything is dropped, so
// "PM₂.₅" and "pm2_5" both become "pm25".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= subscriptZero && r <= subscriptZero+9 {
			r = '0' + (r - subscriptZero)
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeValue stringifies v and normalizes the result.
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case string:
		return Normalize(t)
	case nil:
		return ""
	default:
		return Normalize(fmt.Sprint(t))
	}
}

// Tokens splits s on whitespace and normalizes every piece. Pieces that
// normalize to nothing (a lone "-", "&") are dropped.
func Tokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Words splits s on every rune that is neither a letter nor a digit and
// normalizes the pieces. "Unit_Price (USD)" yields [unit price usd].
func Words(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		if r >= subscriptZero && r <= subscriptZero+9 {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Contains reports whether the normalized form of needle occurs in the
// normalized form of haystack. An empty normalized needle never matches.
func Contains(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}
