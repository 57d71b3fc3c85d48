package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// MinerConfig tunes pagination and politeness delays of the Miner.
type MinerConfig struct {
	PageDelay       time.Duration
	PRDelay         time.Duration
	MaxPagesPerRepo int // 0 means all pages.
	BotLogins       []string
}

// Miner turns the closed pull requests of a repository into dataset records.
type Miner struct {
	ghClient driven.GitHubClient
	sleeper  Sleeper
	cfg      MinerConfig
}

// NewMiner creates a new Miner.
func NewMiner(ghClient driven.GitHubClient, sleeper Sleeper, cfg MinerConfig) *Miner {
	return &Miner{
		ghClient: ghClient,
		sleeper:  sleeper,
		cfg:      cfg,
	}
}

// MineRepository pages through the repository's closed pull requests and
// returns the records that pass the inclusion filter. A pull request whose
// sub-fetch fails is skipped; the error returned here aborts the whole
// repository and no partial records are returned with it.
func (m *Miner) MineRepository(ctx context.Context, repoFullName string) ([]model.PullRequestRecord, error) {
	var records []model.PullRequestRecord
	var listed, skipped int
	// Pages can shift while a repository is mined; a PR listed twice is
	// mined once.
	seen := make(map[int]struct{})

	for page := 1; m.cfg.MaxPagesPerRepo <= 0 || page <= m.cfg.MaxPagesPerRepo; page++ {
		prs, err := m.ghClient.ListClosedPullRequests(ctx, repoFullName, page, SearchPageSize)
		if errors.Is(err, driven.ErrNoData) {
			break
		}
		if err != nil {
			return nil, err
		}
		listed += len(prs)

		for _, pr := range prs {
			if _, dup := seen[pr.Number]; dup {
				continue
			}
			seen[pr.Number] = struct{}{}

			record, ok, err := m.minePullRequest(ctx, pr)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Warn("pull request skipped", "repo", repoFullName, "pr", pr.Number, "error", err)
				skipped++
			} else if ok {
				records = append(records, record)
			}

			if err := m.sleeper.Sleep(ctx, m.cfg.PRDelay); err != nil {
				return nil, err
			}
		}

		slog.Info("pull request page mined",
			"repo", repoFullName,
			"page", page,
			"listed", len(prs),
			"retained_total", len(records),
		)

		if len(prs) < SearchPageSize {
			break
		}

		if err := m.sleeper.Sleep(ctx, m.cfg.PageDelay); err != nil {
			return nil, err
		}
	}

	slog.Info("repository mined",
		"repo", repoFullName,
		"listed", listed,
		"retained", len(records),
		"skipped", skipped,
	)

	return records, nil
}

// minePullRequest enriches one listed pull request: detail counters first,
// then reviews, then the inclusion filter.
func (m *Miner) minePullRequest(ctx context.Context, pr model.PullRequest) (model.PullRequestRecord, bool, error) {
	detail, err := m.ghClient.FetchPRDetail(ctx, pr.RepoFullName, pr.Number)
	if err != nil {
		return model.PullRequestRecord{}, false, err
	}

	reviews, err := m.ghClient.FetchReviews(ctx, pr.RepoFullName, pr.Number)
	if err != nil {
		return model.PullRequestRecord{}, false, err
	}
	human := model.HumanReviews(reviews, m.cfg.BotLogins)

	hours, ok := model.ReviewHours(pr.CreatedAt, pr.ClosedAt)
	if !ok || hours <= model.MinReviewHours || len(human) < model.MinHumanReviews {
		return model.PullRequestRecord{}, false, nil
	}

	record, ok := model.NewPullRequestRecord(pr, *detail, human)
	return record, ok, nil
}
