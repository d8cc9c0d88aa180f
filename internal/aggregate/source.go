package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/employee-cv/internal/db"
	"github.com/jonathan/employee-cv/internal/types"
)

// Feeds holds the decoded contents of the three source feeds
type Feeds struct {
	HRM    []types.HRMRecord
	XOPS   []types.XOPSRecord
	Custom []types.CustomRecord
}

// Merge reconciles the feeds into unified records
func (f *Feeds) Merge() *Result {
	return Merge(f.HRM, f.XOPS, f.Custom)
}

// Source loads the three feeds
type Source interface {
	Load(ctx context.Context) (*Feeds, error)
}

// FileSource reads each feed from a JSON array file. A missing or unset path
// is an empty feed.
type FileSource struct {
	HRMPath    string
	XOPSPath   string
	CustomPath string
}

// Load reads the three files concurrently
func (s *FileSource) Load(ctx context.Context) (*Feeds, error) {
	feeds := &Feeds{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readFeedFile(string(db.FeedHRM), s.HRMPath, &feeds.HRM)
	})
	g.Go(func() error {
		return readFeedFile(string(db.FeedXOPS), s.XOPSPath, &feeds.XOPS)
	})
	g.Go(func() error {
		return readFeedFile(string(db.FeedCustom), s.CustomPath, &feeds.Custom)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

func readFeedFile[T any](feed, path string, out *[]T) error {
	*out = []T{}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &LoadError{Feed: feed, Message: "failed to read file", Cause: err}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &LoadError{Feed: feed, Message: "failed to unmarshal JSON", Cause: err}
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}

// DocumentStore returns the raw documents of a feed
type DocumentStore interface {
	FeedDocuments(ctx context.Context, feed db.Feed) ([]json.RawMessage, error)
}

// PostgresSource reads each feed from its JSONB document table
type PostgresSource struct {
	Store DocumentStore
}

// Load queries the three feed tables concurrently
func (s *PostgresSource) Load(ctx context.Context) (*Feeds, error) {
	feeds := &Feeds{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readFeedDocuments(gctx, s.Store, db.FeedHRM, &feeds.HRM)
	})
	g.Go(func() error {
		return readFeedDocuments(gctx, s.Store, db.FeedXOPS, &feeds.XOPS)
	})
	g.Go(func() error {
		return readFeedDocuments(gctx, s.Store, db.FeedCustom, &feeds.Custom)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

func readFeedDocuments[T any](ctx context.Context, store DocumentStore, feed db.Feed, out *[]T) error {
	docs, err := store.FeedDocuments(ctx, feed)
	if err != nil {
		return &LoadError{Feed: string(feed), Message: "failed to query feed", Cause: err}
	}
	return decodeEach(feed, docs, out)
}

func decodeEach[T any](feed db.Feed, docs []json.RawMessage, out *[]T) error {
	records := make([]T, 0, len(docs))
	for i, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return &LoadError{Feed: string(feed), Message: fmt.Sprintf("failed to decode document %d", i), Cause: err}
		}
		records = append(records, rec)
	}
	*out = records
	return nil
}
