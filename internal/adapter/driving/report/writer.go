// Package report renders an analysis as a static HTML page.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

// Title is the document title of the report page.
const Title = "Pull request review study"

// Render writes the complete report page for a to w.
func Render(ctx context.Context, a model.Analysis, w io.Writer) error {
	body := templ.Raw(RenderMarkdown(Markdown(a)))
	if err := Page(Title, body).Render(ctx, w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Writer persists rendered reports to a file.
type Writer struct {
	path string
}

// NewWriter creates a Writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write renders a and atomically replaces the report file.
func (w *Writer) Write(ctx context.Context, a model.Analysis) error {
	var buf bytes.Buffer
	if err := Render(ctx, a, &buf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := atomic.WriteFile(w.path, &buf); err != nil {
		return fmt.Errorf("replace %s: %w", w.path, err)
	}

	return nil
}
