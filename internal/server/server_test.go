package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/employee-cv/internal/aggregate"
	"github.com/jonathan/employee-cv/internal/collab"
	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/embedding"
	"github.com/jonathan/employee-cv/internal/index"
	"github.com/jonathan/employee-cv/internal/llm"
	"github.com/jonathan/employee-cv/internal/server/ratelimit"
	"github.com/jonathan/employee-cv/internal/service"
	"github.com/jonathan/employee-cv/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
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

const cvResponse = `{
	"personal_info": {"full_name": "Jane Doe", "current_role": "Backend Engineer"},
	"brief": "Backend engineer focused on payments.",
	"skills": [{"category": "Languages", "skills": ["Go"]}],
	"languages": [],
	"hobbies": [],
	"projects": [{"name": "Ledger", "role": "Lead"}]
}`

func newTestServer(t *testing.T, client *MockLLMClient) *Server {
	t.Helper()
	if client == nil {
		client = &MockLLMClient{
			GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
				if strings.Contains(prompt, "You are a CV reviewer") {
					return `[{"field": "brief", "issue": "Too generic"}]`, nil
				}
				return cvResponse, nil
			},
			GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return "Keep it to two pages.", nil
			},
		}
	}

	svc := service.New(service.Options{
		Source: &aggregate.FileSource{
			HRMPath:    "../../testdata/feeds/hrm.json",
			XOPSPath:   "../../testdata/feeds/xops.json",
			CustomPath: "../../testdata/feeds/custom.json",
		},
		Embedder: embedding.NewHashEmbedder(64),
		LLM:      client,
	})

	s := New(svc, Config{
		Port:           0,
		AllowedOrigins: []string{"*"},
		RateLimit:      &ratelimit.Config{Enabled: false},
	})
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodOptions, "/suggestions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	s.allowedOrigins = []string{"https://hr.example.com"}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://hr.example.com")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://hr.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchBeforeLoad(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/suggestions", `{"query": "payments engineer"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodGet, "/index/preview", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoadAndSearch(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/records/load", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, LoadResponse{Status: "loaded", Count: 4}, decodeBody[LoadResponse](t, w))

	w = do(t, s, http.MethodPost, "/suggestions", `{"query": "ledger settlement payments", "top_k": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[SuggestionsResponse](t, w)
	assert.Len(t, resp.Matches, 2)
	for _, m := range resp.Matches {
		assert.GreaterOrEqual(t, m.Similarity, 0.0)
		assert.LessOrEqual(t, m.Similarity, 100.0)
	}

	w = do(t, s, http.MethodGet, "/index/preview?k=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]types.UnifiedRecord](t, w), 3)
}

func TestSuggestionsValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing query", body: `{}`, field: "query"},
		{name: "top_k too large", body: `{"query": "go", "top_k": 1000}`, field: "top_k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/suggestions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody[map[string]string](t, w)["error"], tt.field)
		})
	}

	w := do(t, s, http.MethodPost, "/suggestions", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadStream(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/records/load/stream", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"progress", "progress", "progress", "progress", "complete"}, events)
	assert.Contains(t, w.Body.String(), `"count":4`)
}

func TestUnifiedRecords(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/records/unified", "")
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeBody[[]types.UnifiedRecord](t, w)
	require.Len(t, records, 4)
	assert.Equal(t, "Jane Doe", records[0].FullName)
	assert.NotContains(t, w.Body.String(), "null")
}

func TestFindEmployee(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/records/unified", "").Code)

	w := do(t, s, http.MethodGet, "/employees?query=jandoe", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "E1", decodeBody[types.UnifiedRecord](t, w).EmployeeID)

	w = do(t, s, http.MethodGet, "/employees?query=qqqqqqqqqq", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/employees", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCVFlow(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/records/load", "").Code)

	w := do(t, s, http.MethodPost, "/cv/start/Jane%20Doe", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	draft := decodeBody[cv.Draft](t, w)
	assert.Equal(t, cv.StateDrafted, draft.State)
	assert.Equal(t, "E1", draft.EmployeeID)

	w = do(t, s, http.MethodPost, "/cv/E1/review", "")
	require.Equal(t, http.StatusOK, w.Code)
	draft = decodeBody[cv.Draft](t, w)
	assert.Equal(t, cv.StateReviewed, draft.State)
	require.Len(t, draft.Issues, 1)

	w = do(t, s, http.MethodPost, "/cv/feedback", `{"employee_id": "E1", "feedback": "mention Ledger"}`)
	require.Equal(t, http.StatusOK, w.Code)
	draft = decodeBody[cv.Draft](t, w)
	assert.Equal(t, []string{"mention Ledger"}, draft.Feedback)
	assert.Equal(t, "mention Ledger", draft.LastFeedback)

	w = do(t, s, http.MethodPost, "/cv/E1/refine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cv.StateRefined, decodeBody[cv.Draft](t, w).State)

	w = do(t, s, http.MethodGet, "/cv/E1/draft", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[cv.Draft](t, w).Feedback, 1)

	w = do(t, s, http.MethodPost, "/cv/E1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	draft = decodeBody[cv.Draft](t, w)
	assert.Equal(t, cv.StateEmpty, draft.State)
	assert.Empty(t, draft.Feedback)

	w = do(t, s, http.MethodPost, "/cv/E1/publish", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCVUnknownEmployee(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/records/load", "").Code)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/cv/E404/draft", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/cv/E404/review", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/cv/start/qqqqqqqqqq", "").Code)

	w := do(t, s, http.MethodPost, "/cv/feedback", `{"employee_id": "E404", "feedback": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/cv/feedback", `{"employee_id": "E1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCVCollaboratorFailure(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", collab.Wrap(ctx, "llm", "generate JSON", context.DeadlineExceeded)
		},
	}
	s := newTestServer(t, client)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/records/load", "").Code)

	w := do(t, s, http.MethodPost, "/cv/start/E1", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestAsk(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/ask", `{"question": "How long should a CV be?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Keep it to two pages.", decodeBody[AskResponse](t, w).Answer)

	w = do(t, s, http.MethodPost, "/ask", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil)
	s.rateLimiter.Stop()
	s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})
	t.Cleanup(s.rateLimiter.Stop)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/records/unified", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/records/unified", "").Code)

	w := do(t, s, http.MethodGet, "/records/unified", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health is never limited
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ErrValidation{Field: "query", Message: "is required"}, want: http.StatusBadRequest},
		{name: "empty index", err: index.ErrEmptyIndex, want: http.StatusBadRequest},
		{name: "unknown mode", err: &index.UnknownModeError{Mode: "x"}, want: http.StatusBadRequest},
		{name: "not found", err: &cv.NotFoundError{Kind: "pipeline", Query: "E1"}, want: http.StatusNotFound},
		{name: "uninitialized", err: index.ErrUninitializedIndex, want: http.StatusConflict},
		{name: "collaborator", err: &collab.CallError{Service: "llm", Op: "generate JSON"}, want: http.StatusBadGateway},
		{name: "timeout", err: &collab.CallError{Service: "embedding", Op: "embed", Timeout: true}, want: http.StatusGatewayTimeout},
		{name: "wrapped", err: errors.Join(errors.New("ctx"), index.ErrUninitializedIndex), want: http.StatusConflict},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
