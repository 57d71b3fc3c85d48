package tabular_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ericfisherdev/prstudy/internal/adapter/driven/tabular"
)

func TestXLSXSink_WritesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dataset.xlsx")
	sink := tabular.NewXLSXSink(path)

	require.NoError(t, sink.ReplaceAll(context.Background(), sampleRecords()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(tabular.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, tabular.Columns, rows[0])
	assert.Equal(t, "octocat/hello-world", rows[1][0])
	assert.Equal(t, "42", rows[1][1])
	assert.Equal(t, "merged", rows[1][14])
	assert.Equal(t, "alice", rows[1][16])
	assert.Equal(t, "43", rows[2][1])
}

func TestXLSXSink_ReplaceAllOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	sink := tabular.NewXLSXSink(path)

	require.NoError(t, sink.ReplaceAll(context.Background(), sampleRecords()))
	require.NoError(t, sink.ReplaceAll(context.Background(), sampleRecords()[:1]))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(tabular.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
