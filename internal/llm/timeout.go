package llm

import (
	"context"
	"time"

	"github.com/jonathan/employee-cv/internal/collab"
)

type timeoutClient struct {
	Client
	timeout time.Duration
}

// WithTimeout bounds every generation call on next by d. Failures, including
// deadline expiry, surface as *collab.CallError. A non-positive d only wraps
// errors.
func WithTimeout(next Client, d time.Duration) Client {
	return &timeoutClient{Client: next, timeout: d}
}

func (c *timeoutClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	text, err := c.Client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		return "", collab.Wrap(ctx, "llm", "generate content", err)
	}
	return text, nil
}

func (c *timeoutClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	text, err := c.Client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", collab.Wrap(ctx, "llm", "generate JSON", err)
	}
	return text, nil
}

func (c *timeoutClient) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
