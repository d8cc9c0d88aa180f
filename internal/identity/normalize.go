// Package identity canonicalizes identity strings and resolves raw source
// records to existing unified identities.
package identity

import "strings"

var separatorStripper = strings.NewReplacer("-", "", "_", "")

// Normalize lower-cases and trims s and strips hyphens and underscores.
// It is the only equality basis for identity tokens.
func Normalize(s string) string {
	return separatorStripper.Replace(strings.ToLower(strings.TrimSpace(s)))
}
