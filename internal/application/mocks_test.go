package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	searchRepos  func(ctx context.Context, query string, page, perPage int) ([]model.Repository, error)
	countClosed  func(ctx context.Context, repoFullName string) (int, error)
	listClosed   func(ctx context.Context, repoFullName string, page, perPage int) ([]model.PullRequest, error)
	fetchDetail  func(ctx context.Context, repoFullName string, prNumber int) (*model.PRDetail, error)
	fetchReviews func(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error)

	mu          sync.Mutex
	searchPages []int
	detailCalls []int
	fetchOrder  []string
}

func (m *mockGitHubClient) SearchRepositories(ctx context.Context, query string, page, perPage int) ([]model.Repository, error) {
	m.mu.Lock()
	m.searchPages = append(m.searchPages, page)
	m.mu.Unlock()
	return m.searchRepos(ctx, query, page, perPage)
}

func (m *mockGitHubClient) CountClosedPullRequests(ctx context.Context, repoFullName string) (int, error) {
	return m.countClosed(ctx, repoFullName)
}

func (m *mockGitHubClient) ListClosedPullRequests(ctx context.Context, repoFullName string, page, perPage int) ([]model.PullRequest, error) {
	return m.listClosed(ctx, repoFullName, page, perPage)
}

func (m *mockGitHubClient) FetchPRDetail(ctx context.Context, repoFullName string, prNumber int) (*model.PRDetail, error) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, prNumber)
	m.fetchOrder = append(m.fetchOrder, fmt.Sprintf("detail#%d", prNumber))
	m.mu.Unlock()
	if m.fetchDetail == nil {
		return &model.PRDetail{Additions: 10, Deletions: 2, ChangedFiles: 1}, nil
	}
	return m.fetchDetail(ctx, repoFullName, prNumber)
}

func (m *mockGitHubClient) FetchReviews(ctx context.Context, repoFullName string, prNumber int) ([]model.Review, error) {
	m.mu.Lock()
	m.fetchOrder = append(m.fetchOrder, fmt.Sprintf("reviews#%d", prNumber))
	m.mu.Unlock()
	if m.fetchReviews == nil {
		return nil, nil
	}
	return m.fetchReviews(ctx, repoFullName, prNumber)
}

// recordingSleeper records requested delays without blocking.
type recordingSleeper struct {
	sleeps []time.Duration
	err    error
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return s.err
}

func (s *recordingSleeper) count(d time.Duration) int {
	n := 0
	for _, got := range s.sleeps {
		if got == d {
			n++
		}
	}
	return n
}

// memorySink keeps a copy of every snapshot it is asked to persist.
type memorySink struct {
	snapshots [][]model.PullRequestRecord
	err       error
}

func (s *memorySink) ReplaceAll(_ context.Context, records []model.PullRequestRecord) error {
	if s.err != nil {
		return s.err
	}
	snapshot := make([]model.PullRequestRecord, len(records))
	copy(snapshot, records)
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *memorySink) last() []model.PullRequestRecord {
	if len(s.snapshots) == 0 {
		return nil
	}
	return s.snapshots[len(s.snapshots)-1]
}

type mockAuditStore struct {
	recorded []model.Qualification
}

func (m *mockAuditStore) RecordQualification(_ context.Context, q model.Qualification) error {
	m.recorded = append(m.recorded, q)
	return nil
}

type mockRunStore struct {
	started  []model.CollectionRun
	finished []model.CollectionRun
}

func (m *mockRunStore) StartRun(_ context.Context, run model.CollectionRun) error {
	m.started = append(m.started, run)
	return nil
}

func (m *mockRunStore) FinishRun(_ context.Context, run model.CollectionRun) error {
	m.finished = append(m.finished, run)
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, _ string) (*model.CollectionRun, error) {
	return nil, nil
}

// --- Fixtures ---

var baseTime = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

// closedPR builds a listed pull request that stayed open for the given hours.
func closedPR(repo string, number int, hours float64) model.PullRequest {
	return model.PullRequest{
		Number:       number,
		RepoFullName: repo,
		Title:        fmt.Sprintf("PR %d", number),
		Author:       "author",
		Body:         "description",
		CreatedAt:    baseTime,
		ClosedAt:     baseTime.Add(time.Duration(hours * float64(time.Hour))),
	}
}

func humanReviews(logins ...string) []model.Review {
	reviews := make([]model.Review, 0, len(logins))
	for i, l := range logins {
		reviews = append(reviews, model.Review{ID: int64(i + 1), ReviewerLogin: l, State: model.ReviewStateApproved})
	}
	return reviews
}

func repos(names ...string) []model.Repository {
	result := make([]model.Repository, 0, len(names))
	for i, n := range names {
		result = append(result, model.Repository{FullName: n, Stars: 1000 - i})
	}
	return result
}

func numberedRepos(page, count int) []model.Repository {
	result := make([]model.Repository, 0, count)
	for i := range count {
		result = append(result, model.Repository{FullName: fmt.Sprintf("org%d/repo%d", page, i)})
	}
	return result
}
