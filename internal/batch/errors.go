package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound means the requested root directory does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrNotADirectory means the requested root exists but is not a directory.
	ErrNotADirectory = errors.New("root path is not a directory")
)

// BackupError means the backup copy of an original failed. The replace
// operation is aborted and the original is untouched.
type BackupError struct {
	Original string
	Err      error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup failed for %s: %v", e.Original, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// ReplaceError means the move onto the original failed after a backup was
// already made. The original is gone from its location but the backup
// exists; callers must surface this, not swallow it.
type ReplaceError struct {
	Original   string
	BackupPath string
	Err        error
}

func (e *ReplaceError) Error() string {
	if e.BackupPath != "" {
		return fmt.Sprintf("replace failed for %s (backup preserved at %s): %v", e.Original, e.BackupPath, e.Err)
	}
	return fmt.Sprintf("replace failed for %s: %v", e.Original, e.Err)
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}
