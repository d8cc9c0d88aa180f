package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashDimensions is the vector size of HashEmbedder when unset
const DefaultHashDimensions = 256

// HashEmbedder is an offline Embedder that hashes word and character
// trigram features into a fixed number of buckets. Equal texts always map
// to equal vectors, and texts sharing vocabulary land close together.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a feature-hashing embedder with dims buckets
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Embed returns the hashed feature vector of text
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, word := range words {
		h.add(vec, "w:"+word, 2)
		padded := []rune("#" + word + "#")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "t:"+string(padded[i:i+3]), 1)
		}
	}
	return vec, nil
}

func (h *HashEmbedder) add(vec []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	bucket := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

// Dimensions returns the vector size
func (h *HashEmbedder) Dimensions() int {
	return h.dims
}
