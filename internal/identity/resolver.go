package identity

import (
	"strings"

	"github.com/jonathan/employee-cv/internal/types"
)

// NameMatchThreshold is the minimum similarity ratio for a fuzzy full-name match
const NameMatchThreshold = 0.8

// Candidate is the identity view of an existing unified entry
type Candidate struct {
	Key      string
	FullName string
	Email    string
	Phone    string
}

// Index is the set of unified identities built so far in a merge pass
type Index interface {
	// Has reports whether key already denotes a unified entry
	Has(key string) bool
	// Candidates returns the identity view of every entry
	Candidates() []Candidate
}

// Resolve matches rec to an existing identity key. Strategies are tried in
// priority order and the first hit wins: normalized employee id, email, phone,
// then fuzzy full name. When several candidates qualify at the same tier the
// lexicographically smallest key is returned.
func Resolve(rec types.Identity, idx Index) (string, bool) {
	if id := Normalize(rec.EmployeeID); id != "" && idx.Has(id) {
		return id, true
	}

	candidates := idx.Candidates()

	if email := strings.ToLower(strings.TrimSpace(rec.Email)); email != "" {
		if key, ok := smallestKey(candidates, func(c Candidate) bool {
			return strings.ToLower(strings.TrimSpace(c.Email)) == email
		}); ok {
			return key, true
		}
	}

	if phone := strings.ToLower(strings.TrimSpace(rec.Phone)); phone != "" {
		if key, ok := smallestKey(candidates, func(c Candidate) bool {
			return strings.ToLower(strings.TrimSpace(c.Phone)) == phone
		}); ok {
			return key, true
		}
	}

	return matchName(rec.FullName, candidates)
}

// matchName returns the key whose normalized full name is closest to name,
// if that similarity reaches NameMatchThreshold.
func matchName(name string, candidates []Candidate) (string, bool) {
	target := Normalize(name)
	if target == "" {
		return "", false
	}

	bestKey := ""
	bestScore := -1.0
	for _, c := range candidates {
		candidate := Normalize(c.FullName)
		if candidate == "" {
			continue
		}
		score := Ratio(candidate, target)
		if score < NameMatchThreshold {
			continue
		}
		if score > bestScore || (score == bestScore && c.Key < bestKey) {
			bestKey = c.Key
			bestScore = score
		}
	}

	return bestKey, bestScore >= NameMatchThreshold
}

func smallestKey(candidates []Candidate, match func(Candidate) bool) (string, bool) {
	found := false
	best := ""
	for _, c := range candidates {
		if !match(c) {
			continue
		}
		if !found || c.Key < best {
			best = c.Key
			found = true
		}
	}
	return best, found
}
