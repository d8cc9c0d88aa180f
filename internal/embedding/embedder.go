// Package embedding turns serialized records and queries into dense vectors.
package embedding

import (
	"context"
	"math"
)

// Embedder maps text to a fixed-dimension vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Normalize returns v scaled to unit L2 length. The zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}

	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
