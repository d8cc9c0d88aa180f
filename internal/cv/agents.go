package cv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/employee-cv/internal/llm"
	"github.com/jonathan/employee-cv/internal/prompts"
	"github.com/jonathan/employee-cv/internal/schemas"
	"github.com/jonathan/employee-cv/internal/types"
	rootschemas "github.com/jonathan/employee-cv/schemas"
)

const promptFile = "cv.json"

// RefineInput is everything a refinement call conditions on
type RefineInput struct {
	CV       *types.CV
	Issues   []types.ReviewIssue
	Feedback []WeightedFeedback
	Record   types.UnifiedRecord
}

// Generator produces and critiques CVs. Implementations return *ParseError
// when a response cannot be turned into a valid document and any other error
// for collaborator failures.
type Generator interface {
	Draft(ctx context.Context, rec types.UnifiedRecord) (*types.CV, error)
	Review(ctx context.Context, cv *types.CV, rec types.UnifiedRecord) ([]types.ReviewIssue, error)
	Refine(ctx context.Context, in RefineInput) (*types.CV, error)
}

// LLMGenerator implements Generator on top of an llm.Client
type LLMGenerator struct {
	client llm.Client
}

// NewLLMGenerator creates a generator backed by client
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Draft writes a first CV from the record
func (g *LLMGenerator) Draft(ctx context.Context, rec types.UnifiedRecord) (*types.CV, error) {
	schema, err := rootschemas.Load(rootschemas.CV)
	if err != nil {
		return nil, err
	}
	record, err := marshalIndent(rec)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(promptFile, "draft-cv", map[string]string{
		"Schema": schema,
		"Record": record,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build draft prompt: %w", err)
	}

	resp, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	return parseCV("draft", resp)
}

// Review lists problems in cv relative to the record
func (g *LLMGenerator) Review(ctx context.Context, cv *types.CV, rec types.UnifiedRecord) ([]types.ReviewIssue, error) {
	draft, err := marshalIndent(cv)
	if err != nil {
		return nil, err
	}
	record, err := marshalIndent(rec)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(promptFile, "review-cv", map[string]string{
		"CV":     draft,
		"Record": record,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build review prompt: %w", err)
	}

	resp, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	return parseIssues(resp)
}

// Refine rewrites the CV using issues, ranked feedback and the record
func (g *LLMGenerator) Refine(ctx context.Context, in RefineInput) (*types.CV, error) {
	schema, err := rootschemas.Load(rootschemas.CV)
	if err != nil {
		return nil, err
	}
	current := in.CV
	if current == nil {
		current = types.EmptyCV()
	}
	draft, err := marshalIndent(current)
	if err != nil {
		return nil, err
	}
	issues := in.Issues
	if issues == nil {
		issues = []types.ReviewIssue{}
	}
	issueText, err := marshalIndent(issues)
	if err != nil {
		return nil, err
	}
	record, err := marshalIndent(in.Record)
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(promptFile, "refine-cv", map[string]string{
		"Schema":   schema,
		"CV":       draft,
		"Issues":   issueText,
		"Feedback": formatFeedback(in.Feedback),
		"Record":   record,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build refine prompt: %w", err)
	}

	resp, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, err
	}
	return parseCV("refine", resp)
}

// formatFeedback renders ranked feedback as a numbered list
func formatFeedback(items []WeightedFeedback) string {
	if len(items) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. (weight %.2f) %s\n", i+1, item.Weight, item.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseCV turns a model response into a schema-valid CV
func parseCV(step, resp string) (*types.CV, error) {
	raw := llm.SanitizeObject(resp)

	var cv types.CV
	if err := json.Unmarshal([]byte(raw), &cv); err != nil {
		return nil, &ParseError{Step: step, Message: "response is not a CV object", Cause: err}
	}
	cv.FillDefaults()

	normalized, err := json.Marshal(&cv)
	if err != nil {
		return nil, &ParseError{Step: step, Message: "failed to re-encode CV", Cause: err}
	}
	if err := schemas.ValidateCV(string(normalized)); err != nil {
		return nil, &ParseError{Step: step, Message: "CV does not match schema", Cause: err}
	}
	return &cv, nil
}

// parseIssues accepts a bare array of findings or an object wrapping one
// under "issues".
func parseIssues(resp string) ([]types.ReviewIssue, error) {
	raw := llm.SanitizeArray(resp)
	if raw == "[]" {
		var wrapped struct {
			Issues json.RawMessage `json:"issues"`
		}
		if err := json.Unmarshal([]byte(llm.SanitizeObject(resp)), &wrapped); err == nil && len(wrapped.Issues) > 0 {
			raw = string(wrapped.Issues)
		}
	}

	if err := schemas.ValidateReviewIssues(raw); err != nil {
		return nil, &ParseError{Step: "review", Message: "issues do not match schema", Cause: err}
	}
	var issues []types.ReviewIssue
	if err := json.Unmarshal([]byte(raw), &issues); err != nil {
		return nil, &ParseError{Step: "review", Message: "response is not an issue list", Cause: err}
	}
	if issues == nil {
		issues = []types.ReviewIssue{}
	}
	return issues, nil
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt input: %w", err)
	}
	return string(data), nil
}
