package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdfpress/internal/common"
)

// Replacer moves freshly compressed output onto original files, optionally
// backing the originals up first.
type Replacer struct {
	logger *slog.Logger
}

// NewReplacer creates a replacer.
func NewReplacer(logger *slog.Logger) *Replacer {
	return &Replacer{logger: logger}
}

// Replace moves newContentPath onto originalPath. With makeBackup it first
// copies the original into backupDir, resolving name collisions with an
// incrementing suffix. The move is a rename so the swap is atomic per file;
// the orchestrator keeps the staging tree on the same volume as the root for
// that reason. Returns the backup path, empty when no backup was made.
func (r *Replacer) Replace(originalPath, newContentPath, backupDir string, makeBackup bool) (string, error) {
	if _, err := os.Stat(newContentPath); err != nil {
		return "", &ReplaceError{Original: originalPath, Err: fmt.Errorf("compressed file not found: %w", err)}
	}

	var backupPath string
	if makeBackup {
		var err error
		backupPath, err = r.createBackup(originalPath, backupDir)
		if err != nil {
			return "", &BackupError{Original: originalPath, Err: err}
		}
		r.logger.Info("Original file backed up", "file", originalPath, "backup", backupPath)
	}

	if err := os.Rename(newContentPath, originalPath); err != nil {
		return backupPath, &ReplaceError{Original: originalPath, BackupPath: backupPath, Err: err}
	}

	r.logger.Info("Original file replaced with compressed version", "file", originalPath)
	return backupPath, nil
}

// createBackup copies original into backupDir under its own name, probing
// with _backup_N suffixes until a free name is found. Never overwrites.
func (r *Replacer) createBackup(originalPath, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, common.DefaultFilePermissions); err != nil {
		return "", err
	}

	name := filepath.Base(originalPath)
	backupPath := filepath.Join(backupDir, name)

	extension := filepath.Ext(name)
	stem := strings.TrimSuffix(name, extension)

	counter := 1
	for {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		backupPath = filepath.Join(backupDir, fmt.Sprintf("%s_backup_%d%s", stem, counter, extension))
		counter++
	}

	if err := common.CopyFile(originalPath, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}
