package identity

import (
	"testing"

	"github.com/jonathan/employee-cv/internal/types"
	"github.com/stretchr/testify/assert"
)

// mapIndex is a minimal Index backed by a slice of candidates
type mapIndex []Candidate

func (m mapIndex) Has(key string) bool {
	for _, c := range m {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (m mapIndex) Candidates() []Candidate { return m }

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"E-001", "e001"},
		{"  emp_42  ", "emp42"},
		{"Jane-Doe_Smith", "janedoesmith"},
		{"Jane Doe", "jane doe"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("jane doe", "jane doe"), 1e-9)
	assert.InDelta(t, 0.8, Ratio("alice", "alica"), 1e-9)
	assert.InDelta(t, 0.4, Ratio("alice", "alxyz"), 1e-9)
	assert.InDelta(t, 12.0/14.0, Ratio("jandoe", "jane doe"), 1e-9)
	assert.Equal(t, 0.0, Ratio("abc", ""))
}

func TestResolve_EmployeeIDWinsOverOtherFields(t *testing.T) {
	idx := mapIndex{
		{Key: "e1", FullName: "Jane Doe", Email: "jane@example.com"},
		{Key: "e2", FullName: "Bob Stone", Email: "bob@example.com", Phone: "555-0100"},
	}

	key, ok := Resolve(types.Identity{
		EmployeeID: "E-1",
		FullName:   "Bob Stone",
		Email:      "bob@example.com",
		Phone:      "555-0100",
	}, idx)

	assert.True(t, ok)
	assert.Equal(t, "e1", key)
}

func TestResolve_PriorityOrder(t *testing.T) {
	idx := mapIndex{
		{Key: "e1", FullName: "Jane Doe", Email: "jane@example.com", Phone: "111"},
		{Key: "e2", FullName: "Bob Stone", Email: "bob@example.com", Phone: "222"},
	}

	tests := []struct {
		name     string
		rec      types.Identity
		expected string
	}{
		{
			name:     "email beats phone and name",
			rec:      types.Identity{Email: "JANE@example.com", Phone: "222", FullName: "Bob Stone"},
			expected: "e1",
		},
		{
			name:     "phone beats name",
			rec:      types.Identity{Phone: "222", FullName: "Jane Doe"},
			expected: "e2",
		},
		{
			name:     "name as last resort",
			rec:      types.Identity{EmployeeID: "X9", FullName: "jane-doe"},
			expected: "e1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := Resolve(tt.rec, idx)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestResolve_NameThresholdBoundary(t *testing.T) {
	idx := mapIndex{{Key: "k1", FullName: "Alice"}}

	key, ok := Resolve(types.Identity{FullName: "Alica"}, idx)
	assert.True(t, ok, "ratio of exactly 0.8 should resolve")
	assert.Equal(t, "k1", key)

	_, ok = Resolve(types.Identity{FullName: "Alxyz"}, idx)
	assert.False(t, ok, "ratio below 0.8 should not resolve")
}

func TestResolve_TieBreaksOnSmallestKey(t *testing.T) {
	idx := mapIndex{
		{Key: "z9", FullName: "Sam Lee", Email: "shared@example.com"},
		{Key: "a1", FullName: "Sam Lee", Email: "shared@example.com"},
	}

	key, ok := Resolve(types.Identity{FullName: "Sam Lee"}, idx)
	assert.True(t, ok)
	assert.Equal(t, "a1", key)

	key, ok = Resolve(types.Identity{Email: "shared@example.com"}, idx)
	assert.True(t, ok)
	assert.Equal(t, "a1", key)
}

func TestResolve_NoMatch(t *testing.T) {
	idx := mapIndex{{Key: "e1", FullName: "Jane Doe", Email: "jane@example.com"}}

	_, ok := Resolve(types.Identity{EmployeeID: "E2", FullName: "Totally Different"}, idx)
	assert.False(t, ok)

	_, ok = Resolve(types.Identity{}, idx)
	assert.False(t, ok, "empty identity never matches")
}
