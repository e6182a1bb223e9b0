package batch

import (
	"log/slog"
	"os"
)

// PartitionBySize splits files into those at or above minSize and those
// below it. A file whose size cannot be read goes into toProcess rather than
// being silently dropped; the failure is logged as a warning.
func PartitionBySize(files []string, minSize int64, logger *slog.Logger) (toProcess, skipped []string) {
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			logger.Warn("Failed to read file size, processing anyway", "file", file, "error", err)
			toProcess = append(toProcess, file)
			continue
		}
		if info.Size() < minSize {
			skipped = append(skipped, file)
			continue
		}
		toProcess = append(toProcess, file)
	}
	return toProcess, skipped
}
