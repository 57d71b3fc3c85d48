package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prstudy/internal/application"
	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

func collectRepos(t *testing.T, svc *application.DiscoveryService, limit int) ([]model.Repository, error) {
	t.Helper()
	var result []model.Repository
	for repo, err := range svc.Repositories(context.Background(), limit) {
		if err != nil {
			return result, err
		}
		result = append(result, repo)
	}
	return result, nil
}

func TestDiscovery_StopsAtLimit(t *testing.T) {
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, query string, page, perPage int) ([]model.Repository, error) {
			assert.Equal(t, "stars:>1", query)
			assert.Equal(t, 100, perPage)
			return numberedRepos(page, 100), nil
		},
	}
	sleeper := &recordingSleeper{}
	svc := application.NewDiscoveryService(gh, sleeper, "stars:>1", 2*time.Second)

	result, err := collectRepos(t, svc, 150)

	require.NoError(t, err)
	assert.Len(t, result, 150)
	assert.Equal(t, []int{1, 2}, gh.searchPages)
	assert.Equal(t, "org1/repo0", result[0].FullName)
	assert.Equal(t, "org2/repo49", result[149].FullName)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.sleeps)
}

func TestDiscovery_StopsOnShortPage(t *testing.T) {
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, _ string, page, _ int) ([]model.Repository, error) {
			if page == 1 {
				return numberedRepos(page, 100), nil
			}
			return numberedRepos(page, 30), nil
		},
	}
	svc := application.NewDiscoveryService(gh, &recordingSleeper{}, "stars:>1", time.Second)

	result, err := collectRepos(t, svc, 1000)

	require.NoError(t, err)
	assert.Len(t, result, 130)
	assert.Equal(t, []int{1, 2}, gh.searchPages)
}

func TestDiscovery_StopsOnEmptyPage(t *testing.T) {
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, _ string, page, _ int) ([]model.Repository, error) {
			if page == 1 {
				return numberedRepos(page, 100), nil
			}
			return nil, nil
		},
	}
	svc := application.NewDiscoveryService(gh, &recordingSleeper{}, "stars:>1", time.Second)

	result, err := collectRepos(t, svc, 500)

	require.NoError(t, err)
	assert.Len(t, result, 100)
	assert.Equal(t, []int{1, 2}, gh.searchPages)
}

func TestDiscovery_NoDataEndsSequence(t *testing.T) {
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, _ string, page, _ int) ([]model.Repository, error) {
			if page <= 10 {
				return numberedRepos(page, 100), nil
			}
			return nil, driven.ErrNoData
		},
	}
	svc := application.NewDiscoveryService(gh, &recordingSleeper{}, "stars:>1", 0)

	result, err := collectRepos(t, svc, 2000)

	require.NoError(t, err)
	assert.Len(t, result, 1000)
}

func TestDiscovery_ErrorIsYielded(t *testing.T) {
	boom := errors.New("decode failure")
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, _ string, _, _ int) ([]model.Repository, error) {
			return nil, boom
		},
	}
	svc := application.NewDiscoveryService(gh, &recordingSleeper{}, "stars:>1", 0)

	result, err := collectRepos(t, svc, 10)

	require.ErrorIs(t, err, boom)
	assert.Empty(t, result)
}

func TestDiscovery_IsLazy(t *testing.T) {
	gh := &mockGitHubClient{
		searchRepos: func(_ context.Context, _ string, page, _ int) ([]model.Repository, error) {
			return numberedRepos(page, 100), nil
		},
	}
	svc := application.NewDiscoveryService(gh, &recordingSleeper{}, "stars:>1", 0)

	seq := svc.Repositories(context.Background(), 300)
	assert.Empty(t, gh.searchPages, "no request before iteration")

	for repo, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "org1/repo0", repo.FullName)
		break
	}
	assert.Equal(t, []int{1}, gh.searchPages)

	// Ranging again restarts from page 1.
	for range seq {
		break
	}
	assert.Equal(t, []int{1, 1}, gh.searchPages)
}
