package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// Qualifier decides whether a repository has enough closed pull requests to
// be mined.
type Qualifier struct {
	ghClient     driven.GitHubClient
	minClosedPRs int
	now          func() time.Time
}

// NewQualifier creates a Qualifier. minClosedPRs <= 0 uses model.MinClosedPRs.
func NewQualifier(ghClient driven.GitHubClient, minClosedPRs int) *Qualifier {
	if minClosedPRs <= 0 {
		minClosedPRs = model.MinClosedPRs
	}
	return &Qualifier{
		ghClient:     ghClient,
		minClosedPRs: minClosedPRs,
		now:          time.Now,
	}
}

// Qualify counts the repository's closed pull requests. The repository
// qualifies iff the count is at least the configured minimum; a repository
// reporting no data never qualifies.
func (q *Qualifier) Qualify(ctx context.Context, repoFullName string) (model.Qualification, error) {
	result := model.Qualification{
		RepoFullName: repoFullName,
		CheckedAt:    q.now().UTC(),
	}

	count, err := q.ghClient.CountClosedPullRequests(ctx, repoFullName)
	if errors.Is(err, driven.ErrNoData) {
		slog.Info("repository not qualified", "repo", repoFullName, "reason", "no data")
		return result, nil
	}
	if err != nil {
		return result, err
	}

	result.ClosedPRs = count
	result.Qualified = count >= q.minClosedPRs

	if !result.Qualified {
		slog.Info("repository not qualified",
			"repo", repoFullName,
			"closed_prs", count,
			"min_closed_prs", q.minClosedPRs,
		)
	}

	return result, nil
}
