package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

var _ driven.AuditStore = (*QualificationRepo)(nil)

// QualificationRepo keeps the latest qualification decision per repository,
// qualified or not.
type QualificationRepo struct {
	db *DB
}

// NewQualificationRepo creates a new QualificationRepo backed by the given DB.
func NewQualificationRepo(db *DB) *QualificationRepo {
	return &QualificationRepo{db: db}
}

// RecordQualification upserts the decision for q.RepoFullName.
func (r *QualificationRepo) RecordQualification(ctx context.Context, q model.Qualification) error {
	const query = `
		INSERT INTO qualifications (repo_full_name, closed_prs, qualified, checked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_full_name) DO UPDATE SET
			closed_prs = excluded.closed_prs,
			qualified = excluded.qualified,
			checked_at = excluded.checked_at
	`

	qualified := 0
	if q.Qualified {
		qualified = 1
	}

	if _, err := r.db.Writer.ExecContext(ctx, query,
		q.RepoFullName, q.ClosedPRs, qualified, formatTime(q.CheckedAt),
	); err != nil {
		return fmt.Errorf("upsert qualification %s: %w", q.RepoFullName, err)
	}

	return nil
}

// ListQualified returns the qualified repositories ordered by name.
func (r *QualificationRepo) ListQualified(ctx context.Context) ([]model.Qualification, error) {
	const query = `
		SELECT repo_full_name, closed_prs, qualified, checked_at
		FROM qualifications
		WHERE qualified = 1
		ORDER BY repo_full_name
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query qualifications: %w", err)
	}
	defer rows.Close()

	var result []model.Qualification
	for rows.Next() {
		var q model.Qualification
		var qualified int
		var checkedAt sql.NullString
		if err := rows.Scan(&q.RepoFullName, &q.ClosedPRs, &qualified, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan qualification: %w", err)
		}
		q.Qualified = qualified != 0
		if q.CheckedAt, err = parseNullTime(checkedAt); err != nil {
			return nil, fmt.Errorf("parse checked_at: %w", err)
		}
		result = append(result, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qualifications: %w", err)
	}

	return result, nil
}
