package index

import (
	"strings"

	"github.com/jonathan/employee-cv/internal/identity"
	"github.com/jonathan/employee-cv/internal/types"
)

// DefaultMinScore is the lowest similarity ratio FindEmployee accepts
const DefaultMinScore = 0.4

// lookupFields returns the identity fields searched by FindEmployee, in order
func lookupFields(rec *types.UnifiedRecord) []string {
	return []string{rec.EmployeeID, rec.FullName, rec.Contact.Email, rec.Contact.Phone}
}

// FindEmployee locates one record by id, name, email or phone, tolerating
// typos and partial input. Three tiers run in order, each over every record
// before the next starts: substring containment, token overlap, then
// similarity ratio of at least minScore.
func FindEmployee(records []types.UnifiedRecord, query string, minScore float64) (*types.UnifiedRecord, bool) {
	q := identity.Normalize(query)
	if q == "" {
		return nil, false
	}

	if i := firstMatch(records, func(value string) bool {
		return strings.Contains(value, q)
	}); i >= 0 {
		return found(records, i)
	}

	qTokens := strings.Fields(q)
	if i := firstMatch(records, func(value string) bool {
		return tokenOverlap(qTokens, strings.Fields(value)) > 0.5
	}); i >= 0 {
		return found(records, i)
	}

	best, bestScore := -1, 0.0
	for i := range records {
		for _, field := range lookupFields(&records[i]) {
			value := identity.Normalize(field)
			if value == "" {
				continue
			}
			if score := identity.Ratio(q, value); score > bestScore && score >= minScore {
				best, bestScore = i, score
			}
		}
	}
	if best >= 0 {
		return found(records, best)
	}
	return nil, false
}

func firstMatch(records []types.UnifiedRecord, match func(value string) bool) int {
	for i := range records {
		for _, field := range lookupFields(&records[i]) {
			value := identity.Normalize(field)
			if value != "" && match(value) {
				return i
			}
		}
	}
	return -1
}

// tokenOverlap is the share of query tokens contained in some value token
func tokenOverlap(query, value []string) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for _, q := range query {
		for _, v := range value {
			if strings.Contains(v, q) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(query))
}

func found(records []types.UnifiedRecord, i int) (*types.UnifiedRecord, bool) {
	rec := records[i].Clone()
	return &rec, true
}
