// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// ErrNoData indicates GitHub reported that the resource has no collectable
// data, e.g. pull requests are disabled on the repository (HTTP 422). It is
// the only request failure callers are expected to branch on.
var ErrNoData = errors.New("no collectable data")

// GitHubClient defines the driven port for reading the GitHub REST API.
// Transient failures and rate limits are absorbed by the implementation;
// callers only see ErrNoData, context errors or decoding failures.
type GitHubClient interface {
	// SearchRepositories returns one page of the repository search ranked by
	// stars, descending.
	SearchRepositories(ctx context.Context, query string, page, perPage int) ([]model.Repository, error)
	// CountClosedPullRequests returns the total count of closed pull requests
	// reported by the issue search for the repository.
	CountClosedPullRequests(ctx context.Context, repoFullName string) (int, error)
	// ListClosedPullRequests returns one page of closed pull requests sorted by
	// creation time, newest first.
	ListClosedPullRequests(ctx context.Context, repoFullName string, page, perPage int) ([]model.PullRequest, error)
	// FetchPRDetail returns diff stats and comment counters for a single PR.
	FetchPRDetail(ctx context.Context, repoFullName string, prNumber int) (*model.PRDetail, error)
	FetchReviews(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error)
}
