// Package index provides an in-memory similarity index over unified records
// and fuzzy employee lookup.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jonathan/employee-cv/internal/embedding"
	"github.com/jonathan/employee-cv/internal/logger"
	"github.com/jonathan/employee-cv/internal/types"
)

// Match is a search hit with its similarity in [0, 100]
type Match struct {
	Record     types.UnifiedRecord `json:"record"`
	Similarity float64             `json:"similarity"`
}

// snapshot is an immutable built index. Searches read one snapshot for their
// whole duration.
type snapshot struct {
	records []types.UnifiedRecord
	vectors [][]float32
	dim     int
	mode    Mode
	builtAt time.Time
}

// Index is a flat inner-product index over L2-normalized record embeddings.
// Builds publish a new snapshot atomically; concurrent searches see either
// the previous or the new snapshot in full.
type Index struct {
	embedder embedding.Embedder
	current  atomic.Pointer[snapshot]
}

// New creates an empty index that embeds with embedder
func New(embedder embedding.Embedder) *Index {
	return &Index{embedder: embedder}
}

// ProgressFunc receives the number of embedded records out of total
type ProgressFunc func(done, total int)

type buildOptions struct {
	progress ProgressFunc
}

// BuildOption configures a Build call
type BuildOption func(*buildOptions)

// WithProgress reports progress after each embedded record
func WithProgress(fn ProgressFunc) BuildOption {
	return func(o *buildOptions) {
		o.progress = fn
	}
}

// Build embeds every record and replaces the index contents. On error the
// previous contents stay in place.
func (idx *Index) Build(ctx context.Context, records []types.UnifiedRecord, mode Mode, opts ...BuildOption) error {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	if len(records) == 0 {
		return ErrEmptyIndex
	}

	snap := &snapshot{
		records: make([]types.UnifiedRecord, 0, len(records)),
		vectors: make([][]float32, 0, len(records)),
		mode:    mode,
	}

	for i, rec := range records {
		text, err := Serialize(rec, mode)
		if err != nil {
			return err
		}

		vec, err := idx.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed record %s: %w", rec.EmployeeID, err)
		}
		if len(vec) == 0 {
			return fmt.Errorf("empty embedding for record %s", rec.EmployeeID)
		}

		if i == 0 {
			snap.dim = len(vec)
		} else if len(vec) != snap.dim {
			return &DimensionMismatchError{Expected: snap.dim, Got: len(vec)}
		}

		snap.records = append(snap.records, rec.Clone())
		snap.vectors = append(snap.vectors, embedding.Normalize(vec))

		if options.progress != nil {
			options.progress(i+1, len(records))
		}
	}

	snap.builtAt = time.Now()
	idx.current.Store(snap)

	logger.Ctx(ctx).Info().
		Int("records", len(snap.records)).
		Int("dimensions", snap.dim).
		Str("mode", string(mode)).
		Msg("index built")
	return nil
}

// Search returns up to k records most similar to query, best first. Equal
// scores keep index order.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	snap := idx.current.Load()
	if snap == nil {
		return nil, ErrUninitializedIndex
	}
	if k <= 0 {
		return []Match{}, nil
	}

	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) != snap.dim {
		return nil, &DimensionMismatchError{Expected: snap.dim, Got: len(vec)}
	}
	q := embedding.Normalize(vec)

	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(snap.vectors))
	for i, v := range snap.vectors {
		scores[i] = scored{pos: i, score: dot(q, v)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	matches := make([]Match, 0, k)
	for _, s := range scores[:k] {
		matches = append(matches, Match{
			Record:     snap.records[s.pos].Clone(),
			Similarity: similarity(s.score),
		})
	}
	return matches, nil
}

// Preview returns the first n indexed records
func (idx *Index) Preview(n int) ([]types.UnifiedRecord, error) {
	snap := idx.current.Load()
	if snap == nil {
		return nil, ErrUninitializedIndex
	}
	if n < 0 {
		n = 0
	}
	if n > len(snap.records) {
		n = len(snap.records)
	}
	return cloneRecords(snap.records[:n]), nil
}

// Records returns every indexed record, or nil before the first build
func (idx *Index) Records() []types.UnifiedRecord {
	snap := idx.current.Load()
	if snap == nil {
		return nil
	}
	return cloneRecords(snap.records)
}

// Len returns the number of indexed records
func (idx *Index) Len() int {
	snap := idx.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.records)
}

// Ready reports whether the index has been built
func (idx *Index) Ready() bool {
	return idx.current.Load() != nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// similarity maps an inner product of unit vectors onto [0, 100]
func similarity(score float64) float64 {
	s := (score + 1) / 2 * 100
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}

func cloneRecords(in []types.UnifiedRecord) []types.UnifiedRecord {
	out := make([]types.UnifiedRecord, len(in))
	for i, rec := range in {
		out[i] = rec.Clone()
	}
	return out
}
