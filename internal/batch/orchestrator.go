package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"pdfpress/internal/common"
	"pdfpress/internal/compression"
)

const (
	stagingDirName = "temp_compressed"
	backupDirName  = "original_backups"
	outputSuffix   = "_compressed_pdfs"
)

// Orchestrator runs batch compression sessions: discovery, size filtering,
// fan-out over a bounded worker pool, optional backup/replace, and summary
// aggregation.
type Orchestrator struct {
	engine   compression.Engine
	replacer *Replacer
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator around the given engine.
func NewOrchestrator(engine compression.Engine, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		engine:   engine,
		replacer: NewReplacer(logger),
		logger:   logger,
	}
}

// Run executes one session over req.Root and returns its summary. Per-file
// failures are recorded and never abort the batch; only setup failures
// (missing root, uncreatable output directory) return an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()

	summary := &Summary{Root: req.Root}

	o.logger.Info("Compression session started",
		"root", req.Root,
		"recursive", req.Recursive,
		"engine", o.engine.Name(),
		"level", req.CompressionLevel,
		"mode", req.Mode,
		"min_size", req.MinSizeBytes)

	files, err := Discover(req.Root, req.Recursive)
	if err != nil {
		return nil, err
	}
	summary.FilesFound = len(files)

	if len(files) == 0 {
		summary.Message = "No PDF files found in the selected folder."
		if req.Recursive {
			summary.Message = "No PDF files found in the selected folder and its subdirectories."
		}
		summary.Elapsed = time.Since(start)
		o.logger.Warn(summary.Message)
		return summary, nil
	}

	toProcess, skipped := PartitionBySize(files, req.MinSizeBytes, o.logger)
	summary.Skipped = len(skipped)
	for _, file := range skipped {
		o.logger.Info("Skipping file below size threshold", "file", file, "min_size", req.MinSizeBytes)
		summary.Outcomes = append(summary.Outcomes, Outcome{
			Job:    Job{SourcePath: file, RelPath: relativeTo(file, req.Root)},
			Status: StatusSkipped,
		})
	}

	outputBase, backupBase := o.sessionDirs(req)
	if err := os.MkdirAll(outputBase, common.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputBase, err)
	}

	o.logger.Info("Session directories ready", "output", outputBase, "backup", backupBase,
		"found", len(files), "to_process", len(toProcess), "skipped", len(skipped))

	if err := o.dispatch(ctx, req, toProcess, outputBase, backupBase, summary); err != nil {
		return nil, err
	}

	// Clean up staging in replace mode; a failure here is logged, not fatal.
	if req.Mode.Replaces() {
		if err := os.RemoveAll(outputBase); err != nil {
			o.logger.Warn("Failed to clean up temporary directory", "dir", outputBase, "error", err)
		} else {
			o.logger.Info("Temporary directory cleaned up", "dir", outputBase)
		}
	}

	summary.Elapsed = time.Since(start)
	summary.Ratio = compression.SavedRatio(summary.TotalOriginalBytes, summary.TotalCompressedBytes)

	o.logger.Info("Compression session completed",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed)

	return summary, nil
}

// dispatch fans the jobs out over a bounded pool. Outcomes stream through a
// channel drained by a single collector goroutine, which is the only writer
// of the summary counters.
func (o *Orchestrator) dispatch(ctx context.Context, req Request, toProcess []string, outputBase, backupBase string, summary *Summary) error {
	if len(toProcess) == 0 {
		return nil
	}

	workers := req.Workers
	if workers <= 0 {
		workers = defaultWorkerCount()
	}
	if workers > common.MaxConcurrencyLimit {
		workers = common.MaxConcurrencyLimit
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan Outcome, len(toProcess))

	var collectorWG sync.WaitGroup
	collectorWG.Add(1)
	go func() {
		defer collectorWG.Done()
		for outcome := range results {
			summary.FilesProcessed++
			switch outcome.Status {
			case StatusSuccess:
				summary.Succeeded++
				summary.TotalOriginalBytes += outcome.OriginalSize
				summary.TotalCompressedBytes += outcome.CompressedSize
			case StatusFailed:
				summary.Failed++
			}
			if outcome.Inconsistent {
				summary.InconsistentFiles = append(summary.InconsistentFiles, outcome.Job.SourcePath)
			}
			summary.Outcomes = append(summary.Outcomes, outcome)
		}
	}()

	var wg sync.WaitGroup
	for i, file := range toProcess {
		// Cooperative stop: once cancelled, submit nothing new. In-flight
		// jobs run to completion so the external tool is never killed
		// mid-write.
		if ctx.Err() != nil {
			o.logger.Info("Cancellation requested, no further jobs submitted", "remaining", len(toProcess)-i)
			break
		}

		job, err := o.makeJob(req, file, outputBase, backupBase)
		if err != nil {
			results <- Outcome{Job: job, Status: StatusFailed, Error: err.Error()}
			continue
		}

		wg.Add(1)
		submitted := job
		if err := pool.Submit(func() {
			defer wg.Done()
			results <- o.runJob(ctx, req, submitted)
		}); err != nil {
			wg.Done()
			o.logger.Error("Failed to submit job", "file", file, "error", err)
			results <- Outcome{Job: submitted, Status: StatusFailed, Error: err.Error()}
		}
	}

	wg.Wait()
	close(results)
	collectorWG.Wait()
	return nil
}

// makeJob computes the job's destination, preserving the source's directory
// structure relative to the root. Directory creation is idempotent; an
// "already exists" race between workers is not an error.
func (o *Orchestrator) makeJob(req Request, file, outputBase, backupBase string) (Job, error) {
	rel := relativeTo(file, req.Root)

	job := Job{
		ID:         common.GenerateUUID(),
		SourcePath: file,
		RelPath:    rel,
		DestPath:   filepath.Join(outputBase, rel),
	}
	if req.Mode == ReplaceWithBackup {
		job.BackupDir = filepath.Join(backupBase, filepath.Dir(rel))
	}

	if err := os.MkdirAll(filepath.Dir(job.DestPath), common.DefaultFilePermissions); err != nil {
		return job, fmt.Errorf("failed to create output directory: %w", err)
	}
	return job, nil
}

// runJob compresses one file and, in replace mode, folds the backup/replace
// step into the job before it can be counted successful.
func (o *Orchestrator) runJob(ctx context.Context, req Request, job Job) Outcome {
	o.logger.Info("Processing file", "file", job.RelPath)

	result, err := o.engine.Compress(ctx, job.SourcePath, job.DestPath, req.CompressionLevel, req.Options)
	if err != nil {
		o.logger.Error("Failed to compress file", "file", job.RelPath, "error", err)
		return Outcome{Job: job, Status: StatusFailed, Error: err.Error()}
	}

	outcome := Outcome{
		Job:            job,
		Status:         StatusSuccess,
		OriginalSize:   result.OriginalSize,
		CompressedSize: result.CompressedSize,
	}

	if req.Mode.Replaces() {
		backupPath, err := o.replacer.Replace(job.SourcePath, job.DestPath, job.BackupDir, req.Mode == ReplaceWithBackup)
		outcome.BackupPath = backupPath
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			if replaceErr, ok := err.(*ReplaceError); ok && replaceErr.BackupPath != "" {
				// Original relocated but not restored: report loudly.
				outcome.Inconsistent = true
				o.logger.Error("Original relocated but replacement failed; backup preserved",
					"file", job.SourcePath, "backup", replaceErr.BackupPath, "error", err)
			} else {
				o.logger.Error("Failed to replace original file", "file", job.SourcePath, "error", err)
			}
			return outcome
		}
	}

	o.logger.Info("Successfully processed file",
		"file", job.RelPath,
		"original_size", result.OriginalSize,
		"compressed_size", result.CompressedSize,
		"ratio", fmt.Sprintf("%.1f%%", result.Ratio*100))
	return outcome
}

// sessionDirs derives the output and backup base directories for a session.
// In replace mode the staging tree lives under the root so the final rename
// never crosses filesystems.
func (o *Orchestrator) sessionDirs(req Request) (outputBase, backupBase string) {
	if req.Mode.Replaces() {
		outputBase = filepath.Join(req.Root, stagingDirName)
		if req.Mode == ReplaceWithBackup {
			backupBase = filepath.Join(req.Root, backupDirName)
		}
		return outputBase, backupBase
	}
	parent := filepath.Dir(req.Root)
	return filepath.Join(parent, filepath.Base(req.Root)+outputSuffix), ""
}

func defaultWorkerCount() int {
	workers := runtime.NumCPU() - 1
	if workers < 2 {
		workers = 2
	}
	if workers > common.MaxConcurrencyLimit {
		workers = common.MaxConcurrencyLimit
	}
	return workers
}

func relativeTo(file, root string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return filepath.Base(file)
	}
	return rel
}
