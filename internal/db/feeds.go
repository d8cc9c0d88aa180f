package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Feed Methods
// -----------------------------------------------------------------------------

// FeedDocuments returns the raw JSON documents of a feed in insertion order
func (db *DB) FeedDocuments(ctx context.Context, feed Feed) ([]json.RawMessage, error) {
	table, err := feed.Table()
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s feed: %w", feed, err)
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", feed, err)
		}
		docs = append(docs, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s feed: %w", feed, err)
	}

	return docs, nil
}

// InsertFeedDocument appends one document to a feed
func (db *DB) InsertFeedDocument(ctx context.Context, feed Feed, doc any) error {
	table, err := feed.Table()
	if err != nil {
		return err
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", feed, err)
	}

	_, err = db.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1)`, table), jsonBytes)
	if err != nil {
		return fmt.Errorf("failed to insert %s document: %w", feed, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Merge Run Methods
// -----------------------------------------------------------------------------

// SaveMergeRun stores a merge result snapshot and returns its ID
func (db *DB) SaveMergeRun(ctx context.Context, records any, count int) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(records)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal merge run: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO merge_runs (id, record_count, records) VALUES ($1, $2, $3)`,
		id, count, jsonBytes,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save merge run: %w", err)
	}
	return id, nil
}

// GetMergeRunRecords returns the stored records of a merge run, or nil if
// the run does not exist.
func (db *DB) GetMergeRunRecords(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	var records []byte
	err := db.pool.QueryRow(ctx,
		`SELECT records FROM merge_runs WHERE id = $1`, id,
	).Scan(&records)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merge run: %w", err)
	}
	return json.RawMessage(records), nil
}

// ListMergeRuns returns the most recent merge runs
func (db *DB) ListMergeRuns(ctx context.Context, limit int) ([]MergeRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, record_count, created_at FROM merge_runs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge runs: %w", err)
	}
	defer rows.Close()

	runs := []MergeRun{}
	for rows.Next() {
		var run MergeRun
		if err := rows.Scan(&run.ID, &run.RecordCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan merge run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merge runs: %w", err)
	}
	return runs, nil
}
