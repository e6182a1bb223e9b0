package batch

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPartitionBySize(t *testing.T) {
	root := t.TempDir()
	small := filepath.Join(root, "small.pdf")
	medium := filepath.Join(root, "medium.pdf")
	large := filepath.Join(root, "large.pdf")
	writeTestFile(t, small, 512)
	writeTestFile(t, medium, 2048)
	writeTestFile(t, large, 5120)

	toProcess, skipped := PartitionBySize([]string{small, medium, large}, 1024, discardLogger())

	assert.Equal(t, []string{medium, large}, toProcess)
	assert.Equal(t, []string{small}, skipped)
}

func TestPartitionBySize_ZeroThresholdKeepsEverything(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.pdf")
	writeTestFile(t, file, 1)

	toProcess, skipped := PartitionBySize([]string{file}, 0, discardLogger())
	require.Len(t, toProcess, 1)
	assert.Empty(t, skipped)
}

func TestPartitionBySize_UnreadableFileIsProcessed(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pdf")

	toProcess, skipped := PartitionBySize([]string{missing}, 1024, discardLogger())
	assert.Equal(t, []string{missing}, toProcess)
	assert.Empty(t, skipped)
}

func TestPartitionBySize_ExactBoundaryIsProcessed(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "exact.pdf")
	writeTestFile(t, file, 1024)

	toProcess, skipped := PartitionBySize([]string{file}, 1024, discardLogger())
	assert.Equal(t, []string{file}, toProcess)
	assert.Empty(t, skipped)
}
