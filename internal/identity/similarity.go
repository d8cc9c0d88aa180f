package identity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the character-sequence similarity of a and b in [0, 1],
// computed as 2*M/T over matching blocks (Ratcliff/Obershelp).
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}
