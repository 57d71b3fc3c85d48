package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.RecordSink   = (*RecordRepo)(nil)
	_ driven.RecordSource = (*RecordRepo)(nil)
)

// RecordRepo is the SQLite implementation of the dataset ports.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a new RecordRepo backed by the given DB.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// ReplaceAll atomically replaces the stored dataset. It deletes every row and
// inserts the provided records in a single transaction.
func (r *RecordRepo) ReplaceAll(ctx context.Context, records []model.PullRequestRecord) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM pull_request_records`); err != nil {
		return fmt.Errorf("delete pull request records: %w", err)
	}

	const insertQuery = `
		INSERT INTO pull_request_records (
			repo_full_name, number, created_at, closed_at, merged_at, review_hours,
			additions, deletions, changed_files, body_length, comments, review_comments,
			human_reviews, participants, state, title, author
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.RepoFullName, rec.Number,
			formatTime(rec.CreatedAt), formatTime(rec.ClosedAt), nullableTime(rec.MergedAt),
			rec.ReviewHours,
			rec.Additions, rec.Deletions, rec.ChangedFiles, rec.BodyLength,
			rec.Comments, rec.ReviewComments,
			rec.HumanReviews, rec.Participants,
			string(rec.State), rec.Title, rec.Author,
		); err != nil {
			return fmt.Errorf("insert record %s#%d: %w", rec.RepoFullName, rec.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %d pull request records: %w", len(records), err)
	}

	return nil
}

// LoadAll returns every stored record ordered by repository and number.
func (r *RecordRepo) LoadAll(ctx context.Context) ([]model.PullRequestRecord, error) {
	const query = `
		SELECT repo_full_name, number, created_at, closed_at, merged_at, review_hours,
			additions, deletions, changed_files, body_length, comments, review_comments,
			human_reviews, participants, state, title, author
		FROM pull_request_records
		ORDER BY repo_full_name, number
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pull request records: %w", err)
	}
	defer rows.Close()

	var records []model.PullRequestRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pull request record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pull request records: %w", err)
	}

	return records, nil
}

func scanRecord(s scanner) (*model.PullRequestRecord, error) {
	var rec model.PullRequestRecord
	var createdAt, closedAt, mergedAt sql.NullString
	var state string

	err := s.Scan(
		&rec.RepoFullName, &rec.Number, &createdAt, &closedAt, &mergedAt, &rec.ReviewHours,
		&rec.Additions, &rec.Deletions, &rec.ChangedFiles, &rec.BodyLength,
		&rec.Comments, &rec.ReviewComments,
		&rec.HumanReviews, &rec.Participants,
		&state, &rec.Title, &rec.Author,
	)
	if err != nil {
		return nil, err
	}
	rec.State = model.PRState(state)

	if rec.CreatedAt, err = parseNullTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.ClosedAt, err = parseNullTime(closedAt); err != nil {
		return nil, fmt.Errorf("parse closed_at: %w", err)
	}
	if rec.MergedAt, err = parseNullTime(mergedAt); err != nil {
		return nil, fmt.Errorf("parse merged_at: %w", err)
	}

	return &rec, nil
}
