// Package tabular implements file-based sinks for the dataset: CSV (which can
// be read back for analysis), XLSX and the plain-text qualification audit.
package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// Columns is the header of the dataset, in file order.
var Columns = []string{
	"repo",
	"number",
	"created_at",
	"closed_at",
	"merged_at",
	"review_hours",
	"additions",
	"deletions",
	"changed_files",
	"body_length",
	"comments",
	"review_comments",
	"human_reviews",
	"participants",
	"state",
	"title",
	"author",
}

// formatTime renders timestamps in GitHub's layout; the zero time is empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(model.GitHubTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.GitHubTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// recordFields returns the record's cells as strings, aligned with Columns.
func recordFields(r model.PullRequestRecord) []string {
	return []string{
		r.RepoFullName,
		strconv.Itoa(r.Number),
		formatTime(r.CreatedAt),
		formatTime(r.ClosedAt),
		formatTime(r.MergedAt),
		strconv.FormatFloat(r.ReviewHours, 'f', -1, 64),
		strconv.Itoa(r.Additions),
		strconv.Itoa(r.Deletions),
		strconv.Itoa(r.ChangedFiles),
		strconv.Itoa(r.BodyLength),
		strconv.Itoa(r.Comments),
		strconv.Itoa(r.ReviewComments),
		strconv.Itoa(r.HumanReviews),
		strconv.Itoa(r.Participants),
		string(r.State),
		r.Title,
		r.Author,
	}
}

// parseRecord is the inverse of recordFields. Trailing columns added after
// the state column are optional so older datasets still load.
func parseRecord(fields []string) (model.PullRequestRecord, error) {
	const required = 15
	if len(fields) < required {
		return model.PullRequestRecord{}, fmt.Errorf("expected at least %d columns, got %d", required, len(fields))
	}

	var r model.PullRequestRecord
	var err error

	r.RepoFullName = fields[0]
	ints := []struct {
		idx int
		dst *int
	}{
		{1, &r.Number},
		{6, &r.Additions},
		{7, &r.Deletions},
		{8, &r.ChangedFiles},
		{9, &r.BodyLength},
		{10, &r.Comments},
		{11, &r.ReviewComments},
		{12, &r.HumanReviews},
		{13, &r.Participants},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(fields[f.idx]); err != nil {
			return r, fmt.Errorf("column %s: %w", Columns[f.idx], err)
		}
	}

	if r.CreatedAt, err = parseTime(fields[2]); err != nil {
		return r, fmt.Errorf("column created_at: %w", err)
	}
	if r.ClosedAt, err = parseTime(fields[3]); err != nil {
		return r, fmt.Errorf("column closed_at: %w", err)
	}
	if r.MergedAt, err = parseTime(fields[4]); err != nil {
		return r, fmt.Errorf("column merged_at: %w", err)
	}
	if r.ReviewHours, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return r, fmt.Errorf("column review_hours: %w", err)
	}

	switch state := model.PRState(fields[14]); state {
	case model.PRStateMerged, model.PRStateClosed:
		r.State = state
	default:
		return r, fmt.Errorf("column state: unknown value %q", fields[14])
	}

	if len(fields) > 15 {
		r.Title = fields[15]
	}
	if len(fields) > 16 {
		r.Author = fields[16]
	}

	return r, nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return nil
}
