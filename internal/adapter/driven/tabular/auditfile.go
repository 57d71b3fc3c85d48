package tabular

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

var _ driven.AuditStore = (*AuditFile)(nil)

// AuditFile lists the qualified repositories of the current run, one full name
// per line, in the order they were qualified.
type AuditFile struct {
	path string

	mu        sync.Mutex
	qualified []string
	seen      map[string]struct{}
}

// NewAuditFile creates an AuditFile writing to path. Prior content is replaced
// on the first qualified repository.
func NewAuditFile(path string) *AuditFile {
	return &AuditFile{
		path: path,
		seen: make(map[string]struct{}),
	}
}

// RecordQualification appends a qualified repository and rewrites the file.
// Rejected repositories are ignored.
func (a *AuditFile) RecordQualification(_ context.Context, q model.Qualification) error {
	if !q.Qualified {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.seen[q.RepoFullName]; ok {
		return nil
	}
	a.seen[q.RepoFullName] = struct{}{}
	a.qualified = append(a.qualified, q.RepoFullName)

	var buf bytes.Buffer
	for _, name := range a.qualified {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	if err := ensureDir(a.path); err != nil {
		return err
	}
	if err := atomic.WriteFile(a.path, &buf); err != nil {
		return fmt.Errorf("replace %s: %w", a.path, err)
	}

	return nil
}
