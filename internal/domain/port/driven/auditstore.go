package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// ErrRunNotFound is returned when a collection run ID does not exist.
var ErrRunNotFound = errors.New("collection run not found")

// AuditStore records qualification decisions for later inspection.
type AuditStore interface {
	RecordQualification(ctx context.Context, q model.Qualification) error
}

// RunStore persists collection run bookkeeping.
type RunStore interface {
	// StartRun inserts a run row. run.ID must already be assigned.
	StartRun(ctx context.Context, run model.CollectionRun) error
	// FinishRun updates counters and the finish time of an existing run.
	FinishRun(ctx context.Context, run model.CollectionRun) error
	// GetRun returns ErrRunNotFound for an unknown id.
	GetRun(ctx context.Context, id string) (*model.CollectionRun, error)
}
