package cv

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/employee-cv/internal/llm"
	"github.com/jonathan/employee-cv/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string {
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	return nil
}

// Calls returns how many generation calls were made
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt
func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// promptKind tells which step a rendered prompt belongs to
func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "You are a CV reviewer"):
		return "review"
	case strings.Contains(prompt, "You are a CV refinement assistant"):
		return "refine"
	case strings.Contains(prompt, "You are an expert CV writer"):
		return "draft"
	}
	return "unknown"
}

// scriptedClient answers each step with a fixed response
func scriptedClient(draft, review, refine string) *MockLLMClient {
	return &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			switch promptKind(prompt) {
			case "review":
				return review, nil
			case "refine":
				return refine, nil
			}
			return draft, nil
		},
	}
}

const (
	draftResponse = "```json\n" + `{
		"personal_info": {"full_name": "Jane Doe", "current_role": "Engineer"},
		"brief": "Backend engineer.",
		"skills": [{"category": "Languages", "skills": ["Go"]}],
		"projects": [{"name": "Alpha", "role": "Lead"}]
	}` + "\n```"
	refineResponse = `Here is the update: {
		"personal_info": {"full_name": "Jane Doe", "current_role": "Engineer"},
		"brief": "Backend engineer with payments focus {refined}.",
		"skills": [{"category": "Languages", "skills": ["Go", "SQL"]}],
		"languages": [],
		"hobbies": [],
		"projects": [{"name": "Alpha", "role": "Lead"}]
	}`
	reviewResponse = `[{"field": "brief", "issue": "Too short"}]`
)

func testRecord() types.UnifiedRecord {
	return types.UnifiedRecord{
		EmployeeID:  "E1",
		FullName:    "Jane Doe",
		Contact:     types.Contact{Email: "jane@example.com", Phone: "555-0100"},
		CurrentRole: "Engineer",
		Education:   []string{},
		Skills:      []string{"Go"},
		WorkExperience: []types.WorkExperience{
			types.NewProjectExperience(types.ProjectEntry{ProjectName: "Alpha", Role: "Lead"}),
		},
		Endorsements: []string{},
		Issues:       []string{},
	}
}
