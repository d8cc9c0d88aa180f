package cv

// WeightedFeedback is one feedback item with its importance in (0, 1]
type WeightedFeedback struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// FeedbackPolicy orders and weights the feedback history for refinement.
// history is oldest first; the result is most important first.
type FeedbackPolicy interface {
	Rank(history []string) []WeightedFeedback
}

// RecencyDecay weights the newest item 1.0 and multiplies each older item's
// weight by Decay, never going below Floor.
type RecencyDecay struct {
	Decay float64
	Floor float64
}

// DefaultFeedbackPolicy is the policy used when none is configured
func DefaultFeedbackPolicy() RecencyDecay {
	return RecencyDecay{Decay: 0.5, Floor: 0.1}
}

// Rank returns the history newest first with decaying weights
func (r RecencyDecay) Rank(history []string) []WeightedFeedback {
	out := make([]WeightedFeedback, 0, len(history))
	weight := 1.0
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, WeightedFeedback{Text: history[i], Weight: weight})
		weight *= r.Decay
		if weight < r.Floor {
			weight = r.Floor
		}
	}
	return out
}
