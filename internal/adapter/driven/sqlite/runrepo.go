package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// StartRun inserts the run with its start time.
func (r *RunRepo) StartRun(ctx context.Context, run model.CollectionRun) error {
	const query = `INSERT INTO collection_runs (id, started_at) VALUES (?, ?)`

	if _, err := r.db.Writer.ExecContext(ctx, query, run.ID, formatTime(run.StartedAt)); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	return nil
}

// FinishRun stores the finish time and counters. It returns
// driven.ErrRunNotFound if the run was never started.
func (r *RunRepo) FinishRun(ctx context.Context, run model.CollectionRun) error {
	const query = `
		UPDATE collection_runs
		SET finished_at = ?, repos_seen = ?, repos_qualified = ?, repos_failed = ?, records = ?
		WHERE id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		nullableTime(run.FinishedAt), run.ReposSeen, run.ReposQualified, run.ReposFailed, run.Records,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", run.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for run %s: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, driven.ErrRunNotFound)
	}

	return nil
}

// GetRun returns the run with the given id.
func (r *RunRepo) GetRun(ctx context.Context, id string) (*model.CollectionRun, error) {
	const query = `
		SELECT id, started_at, finished_at, repos_seen, repos_qualified, repos_failed, records
		FROM collection_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, driven.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	return run, nil
}

func scanRun(s scanner) (*model.CollectionRun, error) {
	var run model.CollectionRun
	var startedAt, finishedAt sql.NullString

	err := s.Scan(
		&run.ID, &startedAt, &finishedAt,
		&run.ReposSeen, &run.ReposQualified, &run.ReposFailed, &run.Records,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = parseNullTime(finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}

	return &run, nil
}
