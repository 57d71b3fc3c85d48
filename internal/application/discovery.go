// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// SearchPageSize is the page size used for every paginated GitHub listing.
const SearchPageSize = 100

// Sleeper blocks for a duration or until the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// DiscoveryService pages through the repository search to find the most
// popular repositories.
type DiscoveryService struct {
	ghClient  driven.GitHubClient
	sleeper   Sleeper
	query     string
	pageDelay time.Duration
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(ghClient driven.GitHubClient, sleeper Sleeper, query string, pageDelay time.Duration) *DiscoveryService {
	return &DiscoveryService{
		ghClient:  ghClient,
		sleeper:   sleeper,
		query:     query,
		pageDelay: pageDelay,
	}
}

// Repositories returns a lazy sequence of at most limit repositories ranked by
// stars. Pages are fetched on demand starting at page 1 and the sequence ends
// when limit is reached, a page is empty or shorter than SearchPageSize, or
// GitHub reports no data. A fetch error is yielded once and ends the sequence.
// Ranging over the sequence again restarts from page 1.
func (s *DiscoveryService) Repositories(ctx context.Context, limit int) iter.Seq2[model.Repository, error] {
	return func(yield func(model.Repository, error) bool) {
		count := 0
		for page := 1; count < limit; page++ {
			if page > 1 {
				if err := s.sleeper.Sleep(ctx, s.pageDelay); err != nil {
					yield(model.Repository{}, err)
					return
				}
			}

			repos, err := s.ghClient.SearchRepositories(ctx, s.query, page, SearchPageSize)
			if errors.Is(err, driven.ErrNoData) {
				slog.Info("repository search exhausted", "page", page, "found", count)
				return
			}
			if err != nil {
				yield(model.Repository{}, err)
				return
			}

			slog.Debug("repository search page", "page", page, "count", len(repos))

			for _, repo := range repos {
				if count >= limit {
					return
				}
				count++
				if !yield(repo, nil) {
					return
				}
			}

			if len(repos) < SearchPageSize {
				return
			}
		}
	}
}
