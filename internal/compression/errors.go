package compression

import (
	"errors"
	"fmt"
)

var (
	// ErrGhostscriptNotFound means no usable Ghostscript executable was
	// resolved at startup.
	ErrGhostscriptNotFound = errors.New("ghostscript not found. Please install ghostscript to use this application")

	// ErrOutputMissing means the tool exited successfully but the declared
	// output file does not exist. Ghostscript does not guarantee this, so it
	// is checked explicitly after every run.
	ErrOutputMissing = errors.New("compression tool did not create output file")
)

// ToolError represents a failed invocation of the external compression tool.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v, output: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
