package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pdfpress/internal/common"
)

const logDirName = "compression_logs"

// NewSessionLogger creates a logger writing to both stderr and a
// timestamped log file under <root>/compression_logs. The returned close
// function releases the file; the log path is returned for the final report.
func NewSessionLogger(root string) (*slog.Logger, func() error, string, error) {
	logDir := filepath.Join(root, logDirName)
	if err := os.MkdirAll(logDir, common.DefaultFilePermissions); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("pdf_compression_%s.log", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(file, os.Stderr), nil)
	logger := slog.New(handler)
	logger.Info("Logging initialized", "log_file", logPath)

	return logger, file.Close, logPath, nil
}
