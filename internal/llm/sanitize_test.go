package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject_Exported(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "preamble", input: `Sure! {"a": 1} hope this helps`, expected: `{"a": 1}`, ok: true},
		{name: "braces in preamble", input: `Use {name} here: {"a": "{b}"}`, expected: `{"a": "{b}"}`, ok: true},
		{name: "unbalanced", input: `{"a": 1`, ok: false},
		{name: "none", input: `no json here`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSONArray_Exported(t *testing.T) {
	got, ok := ExtractJSONArray("Issues found:\n[{\"field\": \"brief\", \"issue\": \"too short [sic]\"}]\nDone.")
	assert.True(t, ok)
	assert.Equal(t, `[{"field": "brief", "issue": "too short [sic]"}]`, got)

	_, ok = ExtractJSONArray(`{"not": "an array"}`)
	assert.False(t, ok)
}

func TestSanitizeObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "fenced", input: "```json\n{\"brief\": \"x\"}\n```", expected: `{"brief": "x"}`},
		{name: "chatter around", input: "Here you go: {\"brief\": \"x\"} Thanks!", expected: `{"brief": "x"}`},
		{name: "garbage", input: "I cannot help with that.", expected: "{}"},
		{name: "empty", input: "", expected: "{}"},
		{name: "truncated", input: `{"brief": "x", "skills": [`, expected: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeObject(tt.input))
		})
	}
}

func TestSanitizeArray(t *testing.T) {
	assert.Equal(t, `["a"]`, SanitizeArray("```\n[\"a\"]\n```"))
	assert.Equal(t, "[]", SanitizeArray("nothing to see"))
}
