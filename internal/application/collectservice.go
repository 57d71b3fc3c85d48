package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// CollectService orchestrates discovery, qualification, mining and
// incremental persistence of the dataset.
type CollectService struct {
	discovery   *DiscoveryService
	qualifier   *Qualifier
	miner       *Miner
	sinks       []driven.RecordSink
	auditStore  driven.AuditStore
	runStore    driven.RunStore
	targetRepos int
	now         func() time.Time
}

// NewCollectService creates a new CollectService. auditStore and runStore may
// be nil.
func NewCollectService(
	discovery *DiscoveryService,
	qualifier *Qualifier,
	miner *Miner,
	sinks []driven.RecordSink,
	auditStore driven.AuditStore,
	runStore driven.RunStore,
	targetRepos int,
) *CollectService {
	return &CollectService{
		discovery:   discovery,
		qualifier:   qualifier,
		miner:       miner,
		sinks:       sinks,
		auditStore:  auditStore,
		runStore:    runStore,
		targetRepos: targetRepos,
		now:         time.Now,
	}
}

// Run collects the dataset. After every mined repository the complete record
// collection gathered so far is written to each sink, so an interrupted run
// keeps all repositories finished before the interruption. A repository that
// fails is logged and skipped. Run returns ctx.Err() when interrupted and a
// non-nil error when a sink cannot be written.
func (s *CollectService) Run(ctx context.Context) (model.CollectionRun, error) {
	run := model.CollectionRun{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
	}
	if s.runStore != nil {
		if err := s.runStore.StartRun(ctx, run); err != nil {
			return run, fmt.Errorf("start run: %w", err)
		}
	}
	slog.Info("collection started", "run_id", run.ID, "target_repos", s.targetRepos)

	var records []model.PullRequestRecord
	runErr := s.collect(ctx, &run, &records)

	run.FinishedAt = s.now().UTC()
	run.Records = len(records)
	if s.runStore != nil {
		if err := s.runStore.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			slog.Error("finish run failed", "run_id", run.ID, "error", err)
		}
	}

	slog.Info("collection finished",
		"run_id", run.ID,
		"repos_seen", run.ReposSeen,
		"repos_qualified", run.ReposQualified,
		"repos_failed", run.ReposFailed,
		"records", run.Records,
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
	)

	return run, runErr
}

func (s *CollectService) collect(ctx context.Context, run *model.CollectionRun, records *[]model.PullRequestRecord) error {
	visited := make(map[string]struct{})

	for repo, err := range s.discovery.Repositories(ctx, s.targetRepos) {
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("discover repositories: %w", err)
		}
		if _, dup := visited[repo.FullName]; dup {
			slog.Debug("repository already visited", "repo", repo.FullName)
			continue
		}
		visited[repo.FullName] = struct{}{}
		run.ReposSeen++

		q, err := s.qualifier.Qualify(ctx, repo.FullName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("qualification failed", "repo", repo.FullName, "error", err)
			run.ReposFailed++
			continue
		}

		if s.auditStore != nil {
			if err := s.auditStore.RecordQualification(ctx, q); err != nil {
				slog.Error("record qualification failed", "repo", repo.FullName, "error", err)
			}
		}

		if !q.Qualified {
			continue
		}
		run.ReposQualified++

		slog.Info("mining repository",
			"repo", repo.FullName,
			"stars", repo.Stars,
			"closed_prs", q.ClosedPRs,
			"position", run.ReposSeen,
		)

		repoRecords, err := s.miner.MineRepository(ctx, repo.FullName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("repository mining failed", "repo", repo.FullName, "error", err)
			run.ReposFailed++
			continue
		}

		*records = append(*records, repoRecords...)
		if err := s.persist(ctx, *records); err != nil {
			return err
		}

		slog.Info("dataset checkpoint written",
			"repo", repo.FullName,
			"repo_records", len(repoRecords),
			"total_records", len(*records),
		)
	}

	return ctx.Err()
}

// persist overwrites every sink with the full collection. Writes are not
// canceled by ctx so an interrupt cannot leave a sink half written.
func (s *CollectService) persist(ctx context.Context, records []model.PullRequestRecord) error {
	writeCtx := context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		if err := sink.ReplaceAll(writeCtx, records); err != nil {
			return fmt.Errorf("persist %d records: %w", len(records), err)
		}
	}
	return nil
}
