package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/index"
	"github.com/jonathan/employee-cv/internal/logger"
)

// defaultPreviewSize is the number of records /index/preview returns by default
const defaultPreviewSize = 5

// LoadResponse is returned after the feeds are merged and indexed
type LoadResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SuggestionsRequest is the body of POST /suggestions
type SuggestionsRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,gte=1,lte=100"`
}

// SuggestionsResponse lists the best matching employees
type SuggestionsResponse struct {
	Query   string        `json:"query"`
	Matches []index.Match `json:"matches"`
}

// FeedbackRequest is the body of POST /cv/feedback
type FeedbackRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Feedback   string `json:"feedback" validate:"required"`
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

// AskResponse carries the generated answer
type AskResponse struct {
	Answer string `json:"answer"`
}

// handleLoad merges the feeds and rebuilds the index
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	count, err := s.svc.Reload(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, LoadResponse{Status: "loaded", Count: count})
}

// handleLoadStream merges and rebuilds, streaming build progress via SSE
func (s *Server) handleLoadStream(w http.ResponseWriter, r *http.Request) {
	stream, err := newLoadStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logger.Ctx(r.Context())
	count, err := s.svc.Reload(r.Context(), index.WithProgress(func(done, total int) {
		if err := stream.progress(done, total); err != nil {
			log.Warn().Err(err).Int("done", done).Msg("dropped progress event")
		}
	}))
	if err != nil {
		log.Error().Err(err).Msg("streaming load failed")
		if err := stream.fail(err); err != nil {
			log.Warn().Err(err).Msg("could not report load failure")
		}
		return
	}
	if err := stream.complete(count); err != nil {
		log.Warn().Err(err).Msg("could not report load completion")
	}
}

// handleUnifiedRecords merges the feeds and returns the unified records
func (s *Server) handleUnifiedRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.BuildUnifiedRecords(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handlePreview returns the first k indexed records
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	k := defaultPreviewSize
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.serviceError(w, r, &ErrValidation{Field: "k", Message: "must be a non-negative integer"})
			return
		}
		k = n
	}

	records, err := s.svc.Preview(k)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleFindEmployee looks up one employee by id, name, email or phone
func (s *Server) handleFindEmployee(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.serviceError(w, r, &ErrValidation{Field: "query", Message: "is required"})
		return
	}

	rec, ok := s.svc.FindEmployee(query)
	if !ok {
		s.serviceError(w, r, &cv.NotFoundError{Kind: "employee", Query: query})
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleSuggestions returns the employees most similar to a free-text query
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.TopK == 0 {
		req.TopK = s.svc.DefaultTopK()
	}

	matches, err := s.svc.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SuggestionsResponse{Query: req.Query, Matches: matches})
}

// handleStartCV finds the employee and returns their pipeline, drafting a
// first CV when the pipeline is new.
func (s *Server) handleStartCV(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.StartPipeline(r.Context(), r.PathValue("query"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p.Snapshot())
}

// handleGetDraft returns the current state of a pipeline
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Pipeline(r.PathValue("employee_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p.Snapshot())
}

// handleCVAction runs review, refine or reset on a pipeline
func (s *Server) handleCVAction(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Pipeline(r.PathValue("employee_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	var draft cv.Draft
	switch action := r.PathValue("action"); action {
	case "review":
		draft, err = p.Review(r.Context())
	case "refine":
		draft, err = p.Refine(r.Context())
	case "reset":
		draft = p.Reset()
	case "draft":
		draft, err = p.Draft(r.Context())
	default:
		s.errorResponse(w, http.StatusNotFound, "unknown action: "+action)
		return
	}
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleFeedback records feedback and refines the CV once
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.svc.Pipeline(req.EmployeeID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	draft, err := p.AddFeedback(r.Context(), req.Feedback)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleAsk answers a free-form question
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}

	answer, err := s.svc.Ask(r.Context(), req.Question)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, AskResponse{Answer: answer})
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.serviceError(w, r, toValidationError(err))
		return false
	}
	return true
}

// serviceError logs err and writes it with its mapped status
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	event := logger.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	s.errorResponse(w, status, message)
}
