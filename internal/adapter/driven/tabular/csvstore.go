package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.RecordSink   = (*CSVStore)(nil)
	_ driven.RecordSource = (*CSVStore)(nil)
)

// CSVStore keeps the dataset in a single CSV file with a header row.
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSVStore backed by path. The file is created on the
// first ReplaceAll.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// ReplaceAll overwrites the file with records. The new content is written to a
// temporary file and renamed over the old one, so readers never observe a
// partially written dataset.
func (s *CSVStore) ReplaceAll(_ context.Context, records []model.PullRequestRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(recordFields(r)); err != nil {
			return fmt.Errorf("write csv row %s#%d: %w", r.RepoFullName, r.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := ensureDir(s.path); err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}

// LoadAll reads every record from the file. A missing file yields an empty
// dataset.
func (s *CSVStore) LoadAll(_ context.Context) ([]model.PullRequestRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 0 || header[0] != Columns[0] {
		return nil, fmt.Errorf("read %s: unexpected header %v", s.path, header)
	}

	var records []model.PullRequestRecord
	for line := 2; ; line++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}
