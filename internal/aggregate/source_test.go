package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/employee-cv/internal/db"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := &FileSource{
		HRMPath:    writeFile(t, dir, "hrm.json", `[{"employee_id": "E1", "full_name": "Jane Doe"}]`),
		XOPSPath:   writeFile(t, dir, "xops.json", `[{"employee_id": "e1", "project_name": "Alpha", "role": "Lead"}]`),
		CustomPath: filepath.Join(dir, "missing.json"),
	}

	feeds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, feeds.HRM, 1)
	assert.Len(t, feeds.XOPS, 1)
	assert.NotNil(t, feeds.Custom)
	assert.Empty(t, feeds.Custom)

	result := feeds.Merge()
	assert.Equal(t, []string{"e1"}, result.Keys())
}

func TestFileSource_UnsetPathsAreEmpty(t *testing.T) {
	feeds, err := (&FileSource{}).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, feeds.HRM)
	assert.Empty(t, feeds.XOPS)
	assert.Empty(t, feeds.Custom)
}

func TestFileSource_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	src := &FileSource{HRMPath: writeFile(t, dir, "hrm.json", `{not json`)}

	_, err := src.Load(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "hrm", loadErr.Feed)
}

type fakeStore struct {
	docs map[db.Feed][]string
	err  error
}

func (f *fakeStore) FeedDocuments(_ context.Context, feed db.Feed) ([]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []json.RawMessage{}
	for _, doc := range f.docs[feed] {
		out = append(out, json.RawMessage(doc))
	}
	return out, nil
}

func TestPostgresSource_Load(t *testing.T) {
	store := &fakeStore{docs: map[db.Feed][]string{
		db.FeedHRM:    {`{"employee_id": "E1", "full_name": "Jane Doe"}`},
		db.FeedCustom: {`{"employee_id": "E1", "skills": "Go"}`},
	}}

	feeds, err := (&PostgresSource{Store: store}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, feeds.HRM, 1)
	assert.Empty(t, feeds.XOPS)
	require.Len(t, feeds.Custom, 1)
	assert.Equal(t, []string{"Go"}, []string(feeds.Custom[0].Skills))
}

func TestPostgresSource_QueryError(t *testing.T) {
	cause := errors.New("connection reset")
	_, err := (&PostgresSource{Store: &fakeStore{err: cause}}).Load(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, cause)
}

func TestPostgresSource_BadDocument(t *testing.T) {
	store := &fakeStore{docs: map[db.Feed][]string{db.FeedXOPS: {`{"projects": "oops"}`}}}
	_, err := (&PostgresSource{Store: store}).Load(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "xops", loadErr.Feed)
}
