package batch

import (
	"time"

	"pdfpress/internal/compression"
)

// ReplaceMode controls what happens to originals after a successful
// compression.
type ReplaceMode string

const (
	// KeepOriginals writes compressed files to a sibling output tree.
	KeepOriginals ReplaceMode = "no_replace"
	// ReplaceWithBackup moves the compressed file onto the original after
	// copying the original into the backup directory.
	ReplaceWithBackup ReplaceMode = "replace_with_backup"
	// ReplaceWithoutBackup moves the compressed file onto the original.
	ReplaceWithoutBackup ReplaceMode = "replace_without_backup"
)

// Replaces reports whether the mode overwrites originals.
func (m ReplaceMode) Replaces() bool {
	return m == ReplaceWithBackup || m == ReplaceWithoutBackup
}

// Request describes one batch compression session over one root directory.
type Request struct {
	Root             string
	Recursive        bool
	MinSizeBytes     int64
	CompressionLevel string
	Options          *compression.Options
	Mode             ReplaceMode
	// Workers caps the worker pool; 0 selects the default
	// (max(2, NumCPU-1), capped at common.MaxConcurrencyLimit).
	Workers int
}

// Job is one file's compress-and-optionally-replace unit of work. Immutable
// once dispatched.
type Job struct {
	ID         string
	SourcePath string
	RelPath    string
	DestPath   string
	BackupDir  string
}

// Status classifies a job outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to a single job.
type Outcome struct {
	Job            Job
	Status         Status
	OriginalSize   int64
	CompressedSize int64
	BackupPath     string
	Error          string
	// Inconsistent marks the one loud case: original relocated to backup but
	// the replacement move failed.
	Inconsistent bool
}

// Summary aggregates a whole session. It is mutated only by the collector
// goroutine while the batch runs and is read-only once Run returns.
type Summary struct {
	Root                 string
	FilesFound           int
	FilesProcessed       int
	Succeeded            int
	Failed               int
	Skipped              int
	TotalOriginalBytes   int64
	TotalCompressedBytes int64
	Elapsed              time.Duration
	// Ratio is the aggregate saved fraction, 0 when nothing was compressed.
	Ratio float64
	// InconsistentFiles lists originals left relocated-but-not-restored by a
	// failed replace after backup.
	InconsistentFiles []string
	Outcomes          []Outcome
	Message           string
}
