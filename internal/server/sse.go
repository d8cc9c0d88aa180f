package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Load stream event names
const (
	eventProgress = "progress"
	eventComplete = "complete"
	eventFailed   = "error"
)

var errStreamingUnsupported = errors.New("response writer cannot stream")

// ProgressEvent reports index build progress on the load stream
type ProgressEvent struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// FailedEvent ends a load stream that could not finish
type FailedEvent struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// loadStream writes index rebuild progress as server-sent events. Progress
// callbacks may arrive from several embedding workers, so writes are
// serialized and every event carries a monotonically increasing id.
type loadStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

func newLoadStream(w http.ResponseWriter) (*loadStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &loadStream{w: w, flusher: flusher}, nil
}

func (ls *loadStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.nextID++
	if _, err := fmt.Fprintf(ls.w, "id: %d\nevent: %s\ndata: %s\n\n", ls.nextID, event, data); err != nil {
		return err
	}
	ls.flusher.Flush()
	return nil
}

func (ls *loadStream) progress(done, total int) error {
	return ls.send(eventProgress, ProgressEvent{Done: done, Total: total})
}

func (ls *loadStream) complete(count int) error {
	return ls.send(eventComplete, LoadResponse{Status: "loaded", Count: count})
}

func (ls *loadStream) fail(err error) error {
	return ls.send(eventFailed, FailedEvent{Status: HTTPStatus(err), Error: err.Error()})
}
