// Package service exposes the core operations: reconciling feeds, indexing
// and searching unified records, and driving per-employee CV pipelines.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/employee-cv/internal/aggregate"
	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/embedding"
	"github.com/jonathan/employee-cv/internal/index"
	"github.com/jonathan/employee-cv/internal/llm"
	"github.com/jonathan/employee-cv/internal/logger"
	"github.com/jonathan/employee-cv/internal/prompts"
	"github.com/jonathan/employee-cv/internal/types"
)

// RunStore persists the output of a merge
type RunStore interface {
	SaveMergeRun(ctx context.Context, records any, count int) (uuid.UUID, error)
}

// Options wires the service to its collaborators
type Options struct {
	Source   aggregate.Source
	Embedder embedding.Embedder
	LLM      llm.Client
	Feedback cv.FeedbackPolicy
	Runs     RunStore

	Mode     index.Mode
	TopK     int
	MinScore float64
}

// Service is the façade over the core components
type Service struct {
	source aggregate.Source
	index  *index.Index
	store  *cv.Store
	llm    llm.Client
	runs   RunStore

	mode     index.Mode
	topK     int
	minScore float64

	mu      sync.RWMutex
	records []types.UnifiedRecord
}

// New creates a service. Source defaults to an empty file source.
func New(opts Options) *Service {
	if opts.Source == nil {
		opts.Source = &aggregate.FileSource{}
	}
	if opts.Mode == "" {
		opts.Mode = index.ModeSummary
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MinScore <= 0 {
		opts.MinScore = index.DefaultMinScore
	}

	return &Service{
		source:   opts.Source,
		index:    index.New(opts.Embedder),
		store:    cv.NewStore(cv.NewLLMGenerator(opts.LLM), opts.Feedback),
		llm:      opts.LLM,
		runs:     opts.Runs,
		mode:     opts.Mode,
		topK:     opts.TopK,
		minScore: opts.MinScore,
	}
}

// DefaultTopK is the result count used when a search does not ask for one
func (s *Service) DefaultTopK() int {
	return s.topK
}

// BuildUnifiedRecords loads the feeds and reconciles them. The result is kept
// for lookups and, when a run store is configured, persisted.
func (s *Service) BuildUnifiedRecords(ctx context.Context) ([]types.UnifiedRecord, error) {
	feeds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	records := feeds.Merge().Records()
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	log := logger.Ctx(ctx)
	log.Info().
		Int("hrm", len(feeds.HRM)).
		Int("xops", len(feeds.XOPS)).
		Int("custom", len(feeds.Custom)).
		Int("records", len(records)).
		Msg("feeds merged")

	if s.runs != nil {
		id, err := s.runs.SaveMergeRun(ctx, records, len(records))
		if err != nil {
			return nil, fmt.Errorf("failed to save merge run: %w", err)
		}
		log.Info().Str("run_id", id.String()).Msg("merge run saved")
	}

	return cloneRecords(records), nil
}

// BuildIndex embeds records into the search index
func (s *Service) BuildIndex(ctx context.Context, records []types.UnifiedRecord, mode index.Mode, opts ...index.BuildOption) error {
	if mode == "" {
		mode = s.mode
	}
	return s.index.Build(ctx, records, mode, opts...)
}

// Reload merges the feeds and rebuilds the index from the result. It returns
// the number of indexed records.
func (s *Service) Reload(ctx context.Context, opts ...index.BuildOption) (int, error) {
	records, err := s.BuildUnifiedRecords(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.BuildIndex(ctx, records, s.mode, opts...); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Search returns up to topK records most similar to query
func (s *Service) Search(ctx context.Context, query string, topK int) ([]index.Match, error) {
	return s.index.Search(ctx, query, topK)
}

// Preview returns the first n indexed records
func (s *Service) Preview(n int) ([]types.UnifiedRecord, error) {
	return s.index.Preview(n)
}

// Records returns the most recently merged records, falling back to the
// indexed ones.
func (s *Service) Records() []types.UnifiedRecord {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	if records == nil {
		return s.index.Records()
	}
	return cloneRecords(records)
}

// FindEmployee looks up a record by id, name, email or phone, tolerating typos
func (s *Service) FindEmployee(query string) (*types.UnifiedRecord, bool) {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	if records == nil {
		records = s.index.Records()
	}
	return index.FindEmployee(records, query, s.minScore)
}

// StartPipeline returns the pipeline for the employee matching query,
// creating and drafting it on first use. An existing pipeline is returned
// as is, feedback included.
func (s *Service) StartPipeline(ctx context.Context, query string) (*cv.Pipeline, error) {
	rec, ok := s.FindEmployee(query)
	if !ok {
		return nil, &cv.NotFoundError{Kind: "employee", Query: query}
	}

	p, created := s.store.Start(*rec)
	if created {
		logger.Ctx(ctx).Info().Str("employee_id", rec.EmployeeID).Msg("pipeline started")
	}
	if p.Snapshot().State == cv.StateEmpty {
		if _, err := p.Draft(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Pipeline returns the existing pipeline for an employee id
func (s *Service) Pipeline(employeeID string) (*cv.Pipeline, error) {
	return s.store.Get(employeeID)
}

// Pipelines returns the ids of employees with a pipeline
func (s *Service) Pipelines() []string {
	return s.store.IDs()
}

// Ask sends a free-form question to the generation collaborator
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	prompt, err := prompts.Render("cv.json", "ask", map[string]string{"Question": question})
	if err != nil {
		return "", fmt.Errorf("failed to build ask prompt: %w", err)
	}
	return s.llm.GenerateContent(ctx, prompt, llm.TierLite)
}

func cloneRecords(in []types.UnifiedRecord) []types.UnifiedRecord {
	out := make([]types.UnifiedRecord, len(in))
	for i, rec := range in {
		out[i] = rec.Clone()
	}
	return out
}
