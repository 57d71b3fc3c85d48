// Package github implements the GitHubClient port over the GitHub REST API,
// decoding payloads into go-github types.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const reviewsPerPage = 100

// Client implements the driven.GitHubClient port. Every request goes through
// the resilient Executor.
type Client struct {
	exec *Executor
}

// NewClient creates a new GitHub API client on top of exec.
func NewClient(exec *Executor) *Client {
	return &Client{exec: exec}
}

// SearchRepositories returns one page of repositories matching query, sorted
// by stars descending.
func (c *Client) SearchRepositories(ctx context.Context, query string, page, perPage int) ([]model.Repository, error) {
	params := url.Values{
		"q":        {query},
		"sort":     {"stars"},
		"order":    {"desc"},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}

	var result gh.RepositoriesSearchResult
	if err := c.getJSON(ctx, "search/repositories", params, &result); err != nil {
		return nil, fmt.Errorf("searching repositories (page %d): %w", page, err)
	}

	repos := make([]model.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, model.Repository{
			FullName: r.GetFullName(),
			Stars:    r.GetStargazersCount(),
		})
	}

	return repos, nil
}

// CountClosedPullRequests asks the issue search for a single item and reads
// the reported total.
func (c *Client) CountClosedPullRequests(ctx context.Context, repoFullName string) (int, error) {
	if _, _, err := splitRepo(repoFullName); err != nil {
		return 0, err
	}

	params := url.Values{
		"q":        {fmt.Sprintf("repo:%s is:pr is:closed", repoFullName)},
		"per_page": {"1"},
	}

	var result gh.IssuesSearchResult
	if err := c.getJSON(ctx, "search/issues", params, &result); err != nil {
		return 0, fmt.Errorf("counting closed pull requests for %s: %w", repoFullName, err)
	}

	return result.GetTotal(), nil
}

// ListClosedPullRequests retrieves one page of closed pull requests, newest
// first.
func (c *Client) ListClosedPullRequests(ctx context.Context, repoFullName string, page, perPage int) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"state":     {"closed"},
		"sort":      {"created"},
		"direction": {"desc"},
		"per_page":  {strconv.Itoa(perPage)},
		"page":      {strconv.Itoa(page)},
	}

	var prs []*gh.PullRequest
	path := fmt.Sprintf("repos/%s/%s/pulls", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, params, &prs); err != nil {
		return nil, fmt.Errorf("listing pull requests for %s (page %d): %w", repoFullName, page, err)
	}

	result := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, mapPullRequest(pr, repoFullName))
	}

	return result, nil
}

// FetchPRDetail returns diff stats and comment counters for a single PR.
func (c *Client) FetchPRDetail(ctx context.Context, repoFullName string, prNumber int) (*model.PRDetail, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	var pr gh.PullRequest
	path := fmt.Sprintf("repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(repo), prNumber)
	if err := c.getJSON(ctx, path, nil, &pr); err != nil {
		return nil, fmt.Errorf("fetching PR detail for %s#%d: %w", repoFullName, prNumber, err)
	}

	return &model.PRDetail{
		Additions:      pr.GetAdditions(),
		Deletions:      pr.GetDeletions(),
		ChangedFiles:   pr.GetChangedFiles(),
		Comments:       pr.GetComments(),
		ReviewComments: pr.GetReviewComments(),
	}, nil
}

// FetchReviews retrieves all reviews for a pull request, following pages
// until a short page is returned.
func (c *Client) FetchReviews(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("repos/%s/%s/pulls/%d/reviews", url.PathEscape(owner), url.PathEscape(repo), prNumber)
	var allReviews []model.Review

	for page := 1; ; page++ {
		params := url.Values{
			"per_page": {strconv.Itoa(reviewsPerPage)},
			"page":     {strconv.Itoa(page)},
		}

		var reviews []*gh.PullRequestReview
		if err := c.getJSON(ctx, path, params, &reviews); err != nil {
			return nil, fmt.Errorf("listing reviews for %s#%d (page %d): %w", repoFullName, prNumber, page, err)
		}

		for _, r := range reviews {
			allReviews = append(allReviews, mapReview(r))
		}

		if len(reviews) < reviewsPerPage {
			break
		}
	}

	return allReviews, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.exec.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics; a
// deleted author account maps to an empty login.
func mapPullRequest(pr *gh.PullRequest, repoFullName string) model.PullRequest {
	return model.PullRequest{
		Number:       pr.GetNumber(),
		RepoFullName: repoFullName,
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		AuthorIsBot:  isBotAccount(pr.GetUser()),
		Body:         pr.GetBody(),
		CreatedAt:    pr.GetCreatedAt().Time,
		ClosedAt:     pr.GetClosedAt().Time,
		MergedAt:     pr.GetMergedAt().Time,
	}
}

// mapReview converts a go-github PullRequestReview to a domain model Review.
func mapReview(r *gh.PullRequestReview) model.Review {
	return model.Review{
		ID:            r.GetID(),
		ReviewerLogin: r.GetUser().GetLogin(),
		State:         model.ReviewState(strings.ToLower(r.GetState())),
		SubmittedAt:   r.GetSubmittedAt().Time,
		IsBot:         isBotAccount(r.GetUser()),
	}
}

func isBotAccount(u *gh.User) bool {
	return strings.EqualFold(u.GetType(), "Bot")
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
