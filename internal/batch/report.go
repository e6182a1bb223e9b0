package batch

import (
	"fmt"
	"strings"
	"time"
)

const bannerLine = "=================================================="

// FormatSummary renders a session summary as a human-readable block, the
// same shape that goes into the session log.
func FormatSummary(s *Summary) string {
	var b strings.Builder

	b.WriteString(bannerLine + "\n")
	b.WriteString("COMPRESSION SESSION SUMMARY\n")
	b.WriteString(bannerLine + "\n")
	fmt.Fprintf(&b, "Source directory: %s\n", s.Root)
	fmt.Fprintf(&b, "Files found: %d\n", s.FilesFound)
	fmt.Fprintf(&b, "Files processed: %d\n", s.FilesProcessed)
	fmt.Fprintf(&b, "Successful compressions: %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed compressions: %d\n", s.Failed)
	fmt.Fprintf(&b, "Skipped (below size threshold): %d\n", s.Skipped)

	if s.Succeeded > 0 {
		fmt.Fprintf(&b, "Total original size: %s\n", formatBytes(s.TotalOriginalBytes))
		fmt.Fprintf(&b, "Total compressed size: %s\n", formatBytes(s.TotalCompressedBytes))
		fmt.Fprintf(&b, "Overall compression ratio: %.1f%%\n", s.Ratio*100)
	}

	fmt.Fprintf(&b, "Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))

	if len(s.InconsistentFiles) > 0 {
		b.WriteString("\nWARNING: the following originals were moved to backup but not replaced:\n")
		for _, file := range s.InconsistentFiles {
			fmt.Fprintf(&b, "  %s\n", file)
		}
	}

	if s.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Message)
	}

	return b.String()
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	}
	const kb = 1024
	if n >= kb {
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	}
	return fmt.Sprintf("%d B", n)
}
