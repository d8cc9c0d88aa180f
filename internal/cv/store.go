package cv

import (
	"sort"
	"sync"

	"github.com/jonathan/employee-cv/internal/identity"
	"github.com/jonathan/employee-cv/internal/types"
)

// Store holds one pipeline per employee. Entries are never evicted.
type Store struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	gen       Generator
	policy    FeedbackPolicy
}

// NewStore creates an empty store whose pipelines share gen and policy
func NewStore(gen Generator, policy FeedbackPolicy) *Store {
	if policy == nil {
		policy = DefaultFeedbackPolicy()
	}
	return &Store{
		pipelines: make(map[string]*Pipeline),
		gen:       gen,
		policy:    policy,
	}
}

// Start returns the pipeline for rec, creating it on first use. An existing
// pipeline keeps its CV and feedback. created reports whether a new pipeline
// was made.
func (s *Store) Start(rec types.UnifiedRecord) (p *Pipeline, created bool) {
	key := identity.Normalize(rec.EmployeeID)

	s.mu.RLock()
	p, ok := s.pipelines[key]
	s.mu.RUnlock()
	if ok {
		return p, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pipelines[key]; ok {
		return p, false
	}
	p = NewPipeline(rec, s.gen, s.policy)
	s.pipelines[key] = p
	return p, true
}

// Get returns the pipeline for an employee id
func (s *Store) Get(employeeID string) (*Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pipelines[identity.Normalize(employeeID)]
	if !ok {
		return nil, &NotFoundError{Kind: "pipeline", Query: employeeID}
	}
	return p, nil
}

// IDs returns the employee ids with a pipeline, sorted
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		ids = append(ids, p.EmployeeID())
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of pipelines
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pipelines)
}
