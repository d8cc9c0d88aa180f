package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyDecay_Rank(t *testing.T) {
	policy := RecencyDecay{Decay: 0.5, Floor: 0.1}

	ranked := policy.Rank([]string{"a", "b", "c", "d", "e", "f"})
	require.Len(t, ranked, 6)

	assert.Equal(t, "f", ranked[0].Text)
	assert.Equal(t, "a", ranked[5].Text)

	expected := []float64{1.0, 0.5, 0.25, 0.125, 0.1, 0.1}
	for i, w := range expected {
		assert.InDelta(t, w, ranked[i].Weight, 1e-9, "weight %d", i)
	}
}

func TestRecencyDecay_Empty(t *testing.T) {
	ranked := DefaultFeedbackPolicy().Rank(nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRecencyDecay_NoDecay(t *testing.T) {
	ranked := RecencyDecay{Decay: 1, Floor: 0}.Rank([]string{"x", "y"})
	assert.Equal(t, 1.0, ranked[0].Weight)
	assert.Equal(t, 1.0, ranked[1].Weight)
}

func TestFormatFeedback(t *testing.T) {
	assert.Equal(t, "(none)", formatFeedback(nil))

	text := formatFeedback([]WeightedFeedback{
		{Text: "mention Kafka", Weight: 1},
		{Text: "shorter brief", Weight: 0.5},
	})
	assert.Equal(t, "1. (weight 1.00) mention Kafka\n2. (weight 0.50) shorter brief", text)
}
