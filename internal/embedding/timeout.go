package embedding

import (
	"context"
	"time"

	"github.com/jonathan/employee-cv/internal/collab"
)

type timeoutEmbedder struct {
	next    Embedder
	timeout time.Duration
}

// WithTimeout bounds every Embed call on next by d. Failures, including
// deadline expiry, surface as *collab.CallError. A non-positive d only wraps
// errors.
func WithTimeout(next Embedder, d time.Duration) Embedder {
	return &timeoutEmbedder{next: next, timeout: d}
}

func (e *timeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, collab.Wrap(ctx, "embedding", "embed", err)
	}
	return vec, nil
}
