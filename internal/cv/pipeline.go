package cv

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/employee-cv/internal/logger"
	"github.com/jonathan/employee-cv/internal/types"
)

// State is the stage a pipeline has reached
type State string

// Pipeline states
const (
	StateEmpty    State = "empty"
	StateDrafted  State = "drafted"
	StateReviewed State = "reviewed"
	StateRefined  State = "refined"
)

// Draft is a point-in-time copy of a pipeline, safe to hand to callers
type Draft struct {
	EmployeeID   string              `json:"employee_id"`
	State        State               `json:"state"`
	CV           *types.CV           `json:"cv"`
	Issues       []types.ReviewIssue `json:"issues"`
	Feedback     []string            `json:"feedback"`
	LastFeedback string              `json:"last_feedback"`
}

// Pipeline drives one employee's CV through draft, review and refine.
// The mutex is held for the whole of every mutating operation, generator
// call included, so operations on one pipeline are serialized.
type Pipeline struct {
	mu     sync.Mutex
	record types.UnifiedRecord
	gen    Generator
	policy FeedbackPolicy

	state        State
	cv           *types.CV
	issues       []types.ReviewIssue
	feedback     []string
	lastFeedback string
}

// NewPipeline creates an empty pipeline over a private copy of rec
func NewPipeline(rec types.UnifiedRecord, gen Generator, policy FeedbackPolicy) *Pipeline {
	if policy == nil {
		policy = DefaultFeedbackPolicy()
	}
	return &Pipeline{
		record:   rec.Clone(),
		gen:      gen,
		policy:   policy,
		state:    StateEmpty,
		issues:   []types.ReviewIssue{},
		feedback: []string{},
	}
}

// EmployeeID returns the id of the record the pipeline was started for
func (p *Pipeline) EmployeeID() string {
	return p.record.EmployeeID
}

// Record returns a copy of the originating record
func (p *Pipeline) Record() types.UnifiedRecord {
	return p.record.Clone()
}

// Draft generates a CV from the record, replacing any previous one
func (p *Pipeline) Draft(ctx context.Context) (Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.draft(ctx); err != nil {
		return p.snapshot(), err
	}
	return p.snapshot(), nil
}

// Review critiques the current CV, drafting one first if there is none
func (p *Pipeline) Review(ctx context.Context) (Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateEmpty {
		if err := p.draft(ctx); err != nil {
			return p.snapshot(), err
		}
	}

	issues, err := p.gen.Review(ctx, p.cv.Clone(), p.record.Clone())
	if err != nil {
		if !p.recovered(ctx, "review", err) {
			return p.snapshot(), err
		}
		issues = []types.ReviewIssue{}
	}
	p.issues = issues
	p.state = StateReviewed
	return p.snapshot(), nil
}

// Refine rewrites the CV using the current issues and the full feedback
// history, drafting one first if there is none.
func (p *Pipeline) Refine(ctx context.Context) (Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateEmpty {
		if err := p.draft(ctx); err != nil {
			return p.snapshot(), err
		}
	}
	if err := p.refine(ctx); err != nil {
		return p.snapshot(), err
	}
	return p.snapshot(), nil
}

// AddFeedback records item and refines once. The item is kept even when the
// refinement call fails.
func (p *Pipeline) AddFeedback(ctx context.Context, item string) (Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.feedback = append(p.feedback, item)
	p.lastFeedback = item

	// From Empty the single refine call starts from an empty CV and doubles
	// as the draft.
	if err := p.refine(ctx); err != nil {
		return p.snapshot(), err
	}
	return p.snapshot(), nil
}

// Reset discards the CV, issues and feedback
func (p *Pipeline) Reset() Draft {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateEmpty
	p.cv = nil
	p.issues = []types.ReviewIssue{}
	p.feedback = []string{}
	p.lastFeedback = ""
	return p.snapshot()
}

// Snapshot returns a deep copy of the pipeline's current draft
func (p *Pipeline) Snapshot() Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Pipeline) draft(ctx context.Context) error {
	cv, err := p.gen.Draft(ctx, p.record.Clone())
	if err != nil {
		if !p.recovered(ctx, "draft", err) {
			return err
		}
		cv = p.fallback()
	}
	p.cv = cv
	// Findings about a replaced CV no longer apply.
	p.issues = []types.ReviewIssue{}
	p.state = StateDrafted
	return nil
}

func (p *Pipeline) refine(ctx context.Context) error {
	current := p.cv
	if current == nil {
		current = p.skeleton()
	}

	cv, err := p.gen.Refine(ctx, RefineInput{
		CV:       current.Clone(),
		Issues:   append([]types.ReviewIssue{}, p.issues...),
		Feedback: p.policy.Rank(append([]string{}, p.feedback...)),
		Record:   p.record.Clone(),
	})
	if err != nil {
		if !p.recovered(ctx, "refine", err) {
			return err
		}
		cv = p.fallback()
	}
	p.cv = cv
	p.state = StateRefined
	return nil
}

// recovered logs a parse failure and reports whether err was one
func (p *Pipeline) recovered(ctx context.Context, step string, err error) bool {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return false
	}
	logger.Ctx(ctx).Warn().
		Err(parseErr).
		Str("employee_id", p.record.EmployeeID).
		Str("step", step).
		Msg("recovered from unusable generation response")
	return true
}

// fallback returns the last good CV, or the skeleton when there is none
func (p *Pipeline) fallback() *types.CV {
	if p.cv != nil {
		return p.cv.Clone()
	}
	return p.skeleton()
}

// skeleton is the empty CV seeded with the record's personal details
func (p *Pipeline) skeleton() *types.CV {
	cv := types.EmptyCV()
	cv.PersonalInfo = types.PersonalInfo{
		FullName:    p.record.FullName,
		CurrentRole: p.record.CurrentRole,
		Email:       p.record.Contact.Email,
		Phone:       p.record.Contact.Phone,
	}
	if cv.PersonalInfo.FullName == "" {
		cv.PersonalInfo.FullName = "Unknown"
	}
	return cv
}

func (p *Pipeline) snapshot() Draft {
	return Draft{
		EmployeeID:   p.record.EmployeeID,
		State:        p.state,
		CV:           p.cv.Clone(),
		Issues:       append([]types.ReviewIssue{}, p.issues...),
		Feedback:     append([]string{}, p.feedback...),
		LastFeedback: p.lastFeedback,
	}
}
