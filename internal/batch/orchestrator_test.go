package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfpress/internal/compression"
)

// fakeEngine writes the first half of the input to the output, so every run
// halves the file. Basenames listed in failFiles fail instead; basenames in
// vanishFiles succeed but leave no output behind; basenames in dirOutputs
// succeed but leave a directory at the output path, which lets the replace
// step's backup succeed while the final rename fails.
type fakeEngine struct {
	failFiles   map[string]bool
	vanishFiles map[string]bool
	dirOutputs  map[string]bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Compress(ctx context.Context, inputPath, outputPath, compressionLevel string, options *compression.Options) (compression.Result, error) {
	name := filepath.Base(inputPath)
	if f.failFiles[name] {
		return compression.Result{}, errors.New("simulated engine failure")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return compression.Result{}, err
	}
	half := data[:len(data)/2]
	if err := os.WriteFile(outputPath, half, 0644); err != nil {
		return compression.Result{}, err
	}

	if f.vanishFiles[name] {
		if err := os.Remove(outputPath); err != nil {
			return compression.Result{}, err
		}
	}

	if f.dirOutputs[name] {
		if err := os.Remove(outputPath); err != nil {
			return compression.Result{}, err
		}
		if err := os.Mkdir(outputPath, 0755); err != nil {
			return compression.Result{}, err
		}
	}

	return compression.Result{
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(half)),
		Ratio:          compression.SavedRatio(int64(len(data)), int64(len(half))),
	}, nil
}

func newTestOrchestrator(engine compression.Engine) *Orchestrator {
	return NewOrchestrator(engine, discardLogger())
}

func TestRun_MissingRoot(t *testing.T) {
	o := newTestOrchestrator(&fakeEngine{})
	_, err := o.Run(context.Background(), Request{Root: filepath.Join(t.TempDir(), "nope")})
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestRun_EmptyDirectory(t *testing.T) {
	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{Root: t.TempDir(), Recursive: true})
	require.NoError(t, err)
	assert.Zero(t, summary.FilesFound)
	assert.Zero(t, summary.FilesProcessed)
	assert.Contains(t, summary.Message, "No PDF files found")
}

func TestRun_KeepOriginals(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	for i := 0; i < 10; i++ {
		writeTestFile(t, filepath.Join(root, string(rune('a'+i))+".pdf"), 1000)
	}

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{
		Root:    root,
		Workers: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, summary.FilesFound)
	assert.Equal(t, 10, summary.FilesProcessed)
	assert.Equal(t, 10, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)
	assert.Equal(t, int64(10000), summary.TotalOriginalBytes)
	assert.Equal(t, int64(5000), summary.TotalCompressedBytes)
	assert.InDelta(t, 0.5, summary.Ratio, 0.001)

	// Originals untouched, outputs in the sibling directory.
	outputBase := filepath.Join(parent, "docs_compressed_pdfs")
	for i := 0; i < 10; i++ {
		name := string(rune('a'+i)) + ".pdf"

		info, err := os.Stat(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), info.Size())

		out, err := os.Stat(filepath.Join(outputBase, name))
		require.NoError(t, err)
		assert.Equal(t, int64(500), out.Size())
	}
}

func TestRun_PreservesDirectoryStructure(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	writeTestFile(t, filepath.Join(root, "top.pdf"), 100)
	writeTestFile(t, filepath.Join(root, "sub", "deeper", "nested.pdf"), 100)

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{Root: root, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	outputBase := filepath.Join(parent, "docs_compressed_pdfs")
	assert.FileExists(t, filepath.Join(outputBase, "top.pdf"))
	assert.FileExists(t, filepath.Join(outputBase, "sub", "deeper", "nested.pdf"))
}

func TestRun_SizeFilter(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	writeTestFile(t, filepath.Join(root, "small.pdf"), 512)
	writeTestFile(t, filepath.Join(root, "medium.pdf"), 2048)
	writeTestFile(t, filepath.Join(root, "large.pdf"), 5120)

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{
		Root:         root,
		MinSizeBytes: 1024,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesFound)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Succeeded)
	// Skipped files never reach the engine and appear in the outcomes.
	assert.NoFileExists(t, filepath.Join(parent, "docs_compressed_pdfs", "small.pdf"))
	assert.Len(t, summary.Outcomes, 3)

	var skippedOutcome *Outcome
	for i := range summary.Outcomes {
		if summary.Outcomes[i].Status == StatusSkipped {
			skippedOutcome = &summary.Outcomes[i]
		}
	}
	require.NotNil(t, skippedOutcome)
	assert.Equal(t, "small.pdf", skippedOutcome.Job.RelPath)
}

func TestRun_PartialFailure(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	writeTestFile(t, filepath.Join(root, "good.pdf"), 1000)
	writeTestFile(t, filepath.Join(root, "bad.pdf"), 1000)
	writeTestFile(t, filepath.Join(root, "also_good.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{failFiles: map[string]bool{"bad.pdf": true}})
	summary, err := o.Run(context.Background(), Request{Root: root, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesProcessed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	// Only successful files contribute to the byte totals.
	assert.Equal(t, int64(2000), summary.TotalOriginalBytes)
	assert.Equal(t, int64(1000), summary.TotalCompressedBytes)

	// The failing file's original is untouched.
	info, err := os.Stat(filepath.Join(root, "bad.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Size())
}

func TestRun_ReplaceWithBackup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	writeTestFile(t, filepath.Join(root, "a.pdf"), 1000)
	writeTestFile(t, filepath.Join(root, "sub", "b.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{
		Root:      root,
		Recursive: true,
		Mode:      ReplaceWithBackup,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	// Originals now hold the compressed content.
	for _, rel := range []string{"a.pdf", filepath.Join("sub", "b.pdf")} {
		info, err := os.Stat(filepath.Join(root, rel))
		require.NoError(t, err)
		assert.Equal(t, int64(500), info.Size(), rel)

		backup, err := os.Stat(filepath.Join(root, "original_backups", rel))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), backup.Size(), rel)
	}

	// Staging tree is cleaned up after the session.
	assert.NoDirExists(t, filepath.Join(root, "temp_compressed"))
}

func TestRun_ReplaceWithoutBackup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	writeTestFile(t, filepath.Join(root, "a.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(context.Background(), Request{
		Root: root,
		Mode: ReplaceWithoutBackup,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	info, err := os.Stat(filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.Size())
	assert.NoDirExists(t, filepath.Join(root, "original_backups"))
}

func TestRun_ReplaceMissingOutputFails(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	writeTestFile(t, filepath.Join(root, "a.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{vanishFiles: map[string]bool{"a.pdf": true}})
	summary, err := o.Run(context.Background(), Request{
		Root: root,
		Mode: ReplaceWithBackup,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Succeeded)

	// Replace was never attempted, so the original keeps its content.
	info, err := os.Stat(filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Size())
}

// A replace that fails after the backup was made must be counted failed,
// flagged inconsistent, and listed in the summary.
func TestRun_ReplaceFailureAfterBackupIsLoud(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	writeTestFile(t, filepath.Join(root, "a.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{dirOutputs: map[string]bool{"a.pdf": true}})
	summary, err := o.Run(context.Background(), Request{
		Root: root,
		Mode: ReplaceWithBackup,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Succeeded)
	require.Len(t, summary.InconsistentFiles, 1)
	assert.Equal(t, filepath.Join(root, "a.pdf"), summary.InconsistentFiles[0])

	var failed *Outcome
	for i := range summary.Outcomes {
		if summary.Outcomes[i].Status == StatusFailed {
			failed = &summary.Outcomes[i]
		}
	}
	require.NotNil(t, failed)
	assert.True(t, failed.Inconsistent)
	require.NotEmpty(t, failed.BackupPath)

	// The backup holds the original content; the original was never replaced.
	backup, err := os.Stat(failed.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), backup.Size())

	original, err := os.Stat(filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), original.Size())
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	for i := 0; i < 5; i++ {
		writeTestFile(t, filepath.Join(root, string(rune('a'+i))+".pdf"), 1000)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(&fakeEngine{})
	summary, err := o.Run(ctx, Request{Root: root})
	require.NoError(t, err)

	// Nothing is submitted once cancellation is observed.
	assert.Equal(t, 5, summary.FilesFound)
	assert.Zero(t, summary.FilesProcessed)
	assert.Zero(t, summary.Succeeded)
}

// A second run over the same tree with replacement off must leave the
// originals byte-identical.
func TestRun_KeepOriginalsIsIdempotent(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "docs")
	writeTestFile(t, filepath.Join(root, "a.pdf"), 1000)

	o := newTestOrchestrator(&fakeEngine{})
	req := Request{Root: root}

	for i := 0; i < 2; i++ {
		summary, err := o.Run(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Succeeded)
	}

	info, err := os.Stat(filepath.Join(root, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Size())
}
