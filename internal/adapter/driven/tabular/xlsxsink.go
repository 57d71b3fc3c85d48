package tabular

import (
	"context"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// SheetName is the worksheet holding the dataset.
const SheetName = "pull_requests"

var _ driven.RecordSink = (*XLSXSink)(nil)

// XLSXSink renders the dataset as a spreadsheet with typed numeric cells.
type XLSXSink struct {
	path string
}

// NewXLSXSink creates an XLSXSink writing to path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

// ReplaceAll rebuilds the workbook from records and atomically replaces the
// file.
func (s *XLSXSink) ReplaceAll(_ context.Context, records []model.PullRequestRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		row := xlsxRow(r)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %s#%d: %w", r.RepoFullName, r.Number, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}

	if err := ensureDir(s.path); err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, buf); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}

func xlsxRow(r model.PullRequestRecord) []any {
	return []any{
		r.RepoFullName,
		r.Number,
		formatTime(r.CreatedAt),
		formatTime(r.ClosedAt),
		formatTime(r.MergedAt),
		r.ReviewHours,
		r.Additions,
		r.Deletions,
		r.ChangedFiles,
		r.BodyLength,
		r.Comments,
		r.ReviewComments,
		r.HumanReviews,
		r.Participants,
		string(r.State),
		r.Title,
		r.Author,
	}
}
