// internal/matching/adoption.go

// Package matching scores and ranks technology records against a user's
// profile or context. Every function here is pure: no I/O, no shared state,
// and malformed record fields only zero out the affected term.
package matching

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAdoptionRate reads the leading integer of an adoption rate such as
// "35%" or " 42 percent". Leading whitespace and a sign are accepted. ok is
// false when no digits follow, e.g. "N/A" or "".
func ParseAdoptionRate(text string) (rate float64, ok bool) {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign = s[:1]
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(sign+s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// adoption returns the parsed rate, or 0 when it cannot be parsed.
func adoption(t string) float64 {
	v, _ := ParseAdoptionRate(t)
	return v
}
