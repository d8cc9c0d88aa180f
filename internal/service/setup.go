package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/employee-cv/internal/aggregate"
	"github.com/jonathan/employee-cv/internal/config"
	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/db"
	"github.com/jonathan/employee-cv/internal/embedding"
	"github.com/jonathan/employee-cv/internal/index"
	"github.com/jonathan/employee-cv/internal/llm"
)

// Needs selects which collaborators Setup constructs. Commands that only
// merge or look up records run without API keys.
type Needs struct {
	LLM      bool
	Embedder bool
	SaveRuns bool
}

// Setup builds a service from configuration. The returned cleanup releases
// every connection Setup opened and is safe to call when err is non-nil.
func Setup(ctx context.Context, cfg *config.Config, needs Needs) (*Service, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	mode, err := index.ParseMode(cfg.Index.Mode)
	if err != nil {
		return nil, cleanup, err
	}

	opts := Options{
		Mode:     mode,
		TopK:     cfg.Index.TopK,
		MinScore: cfg.Index.MinScore,
		Feedback: cv.RecencyDecay{Decay: cfg.Feedback.Decay, Floor: cfg.Feedback.Floor},
		Source: &aggregate.FileSource{
			HRMPath:    cfg.Sources.HRMPath,
			XOPSPath:   cfg.Sources.XOPSPath,
			CustomPath: cfg.Sources.CustomPath,
		},
	}

	if cfg.Sources.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.Sources.DatabaseURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() error { database.Close(); return nil })

		if err := database.EnsureSchema(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("failed to prepare database schema: %w", err)
		}
		opts.Source = &aggregate.PostgresSource{Store: database}
		if needs.SaveRuns {
			opts.Runs = database
		}
	} else if needs.SaveRuns {
		return nil, cleanup, errors.New("saving merge runs requires sources.database_url")
	}

	if needs.LLM {
		client, err := NewLLMClient(ctx, cfg.LLM)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, client.Close)
		opts.LLM = client
	}

	if needs.Embedder {
		embedder, closeEmbedder, err := NewEmbedder(ctx, cfg.Embedding)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, closeEmbedder)
		opts.Embedder = embedder
	}

	return New(opts), cleanup, nil
}

// NewLLMClient builds the configured generation client with a per-call timeout
func NewLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	llmConfig, err := llm.ConfigFor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL != "" {
		llmConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Temperature > 0 {
		llmConfig.Temperature = cfg.Temperature
	}
	if llmConfig, err = llmConfig.WithModels(cfg.Models); err != nil {
		return nil, fmt.Errorf("llm models: %w", err)
	}

	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client (set %s): %w", cfg.APIKeyEnv, err)
	}
	return llm.WithTimeout(client, cfg.TimeoutDuration()), nil
}

// NewEmbedder builds the configured embedder. Calls to a remote provider get
// a per-call timeout, and vectors are cached per the cache settings.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, func() error, error) {
	var (
		base    embedding.Embedder
		model   string
		closers []func() error
	)

	switch cfg.Provider {
	case "hash":
		h := embedding.NewHashEmbedder(cfg.Dimensions)
		base, model = h, fmt.Sprintf("hash-%d", h.Dimensions())
	case "openai":
		e, err := embedding.NewOpenAIEmbedder(cfg.APIKey(), cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder (set %s): %w", cfg.APIKeyEnv, err)
		}
		base, model = embedding.WithTimeout(e, cfg.TimeoutDuration()), e.Model()
	default:
		e, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey(), cfg.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder (set %s): %w", cfg.APIKeyEnv, err)
		}
		closers = append(closers, e.Close)
		base, model = embedding.WithTimeout(e, cfg.TimeoutDuration()), e.Model()
	}

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	switch cfg.Cache.Backend {
	case "redis":
		cache, err := embedding.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTLDuration())
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		closers = append(closers, cache.Close)
		return embedding.NewCachedEmbedder(base, cache, model), closeAll, nil
	case "memory":
		return embedding.NewCachedEmbedder(base, embedding.NewMemoryCache(), model), closeAll, nil
	}
	return base, closeAll, nil
}
