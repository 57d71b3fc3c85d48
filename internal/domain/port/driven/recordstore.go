package driven

import (
	"context"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// RecordSink defines the driven port for persisting the collected dataset.
// Uses full replacement strategy: every call overwrites prior content with the
// complete record collection.
type RecordSink interface {
	ReplaceAll(ctx context.Context, records []model.PullRequestRecord) error
}

// RecordSource loads a previously persisted dataset.
type RecordSource interface {
	LoadAll(ctx context.Context) ([]model.PullRequestRecord, error)
}
