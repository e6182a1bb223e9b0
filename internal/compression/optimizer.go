package compression

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Optimizer is the in-process engine: it rewrites the document through
// pdfcpu's optimizer (stream deflation, duplicate-object garbage collection)
// instead of invoking an external tool. It needs no binaries on the host.
type Optimizer struct {
	logger *slog.Logger
}

// NewOptimizer creates the pure-Go optimizer engine.
func NewOptimizer(logger *slog.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Name identifies the engine in logs and summaries.
func (o *Optimizer) Name() string { return "optimizer" }

// Compress rewrites inputPath into outputPath with pdfcpu's optimizer and
// optionally strips document properties. All handles are scoped to this call.
func (o *Optimizer) Compress(ctx context.Context, inputPath, outputPath, compressionLevel string, options *Options) (Result, error) {
	// Work on a copy: the caller's options are shared across workers.
	opts := DefaultOptions()
	if options != nil {
		opts = *options
	}
	opts.applyDefaults()
	options = &opts

	originalInfo, err := os.Stat(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat input file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	conf := model.NewDefaultConfiguration()
	if err := api.OptimizeFile(inputPath, outputPath, conf); err != nil {
		return Result{}, &ToolError{Tool: "pdfcpu optimizer", Err: err}
	}

	if options.RemoveMetadata {
		if err := o.stripProperties(outputPath, conf); err != nil {
			// Keep the optimized output; metadata removal is best effort.
			o.logger.Warn("Failed to strip document properties", "file", outputPath, "error", err)
		}
	}

	compressedInfo, err := os.Stat(outputPath)
	if os.IsNotExist(err) {
		return Result{}, ErrOutputMissing
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		OriginalSize:   originalInfo.Size(),
		CompressedSize: compressedInfo.Size(),
		Ratio:          SavedRatio(originalInfo.Size(), compressedInfo.Size()),
	}, nil
}

// stripProperties removes all document info properties in place.
func (o *Optimizer) stripProperties(path string, conf *model.Configuration) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	properties, err := api.Properties(file, conf)
	file.Close()
	if err != nil {
		return err
	}
	if len(properties) == 0 {
		return nil
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}

	return api.RemovePropertiesFile(path, "", keys, conf)
}
