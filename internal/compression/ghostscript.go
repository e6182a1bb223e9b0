package compression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Ghostscript compresses PDFs by shelling out to the gs executable.
type Ghostscript struct {
	path   string
	logger *slog.Logger
}

// NewGhostscript creates a Ghostscript engine bound to the given executable
// path. An empty path is allowed; Compress then fails with
// ErrGhostscriptNotFound.
func NewGhostscript(path string, logger *slog.Logger) *Ghostscript {
	return &Ghostscript{
		path:   path,
		logger: logger,
	}
}

// Name identifies the engine in logs and summaries.
func (g *Ghostscript) Name() string { return "ghostscript" }

// IsAvailable checks if Ghostscript is available
func (g *Ghostscript) IsAvailable() bool {
	return g.path != ""
}

// Path returns the path to the Ghostscript executable
func (g *Ghostscript) Path() string {
	return g.path
}

// Compress compresses a PDF file using Ghostscript. It writes exactly one
// file at outputPath and never modifies inputPath.
func (g *Ghostscript) Compress(ctx context.Context, inputPath, outputPath, compressionLevel string, options *Options) (Result, error) {
	if g.path == "" {
		return Result{}, ErrGhostscriptNotFound
	}

	// Work on a copy: the caller's options are shared across workers.
	opts := DefaultOptions()
	if options != nil {
		opts = *options
	}
	opts.applyDefaults()
	options = &opts

	// Cancellation is honored before the tool starts; a running gs process
	// is never killed mid-write, to avoid corrupt partial output.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	originalInfo, err := os.Stat(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat input file: %w", err)
	}

	// Handle grayscale conversion if needed
	actualInputPath := inputPath
	if options.ConvertToGrayscale {
		tempGrayscalePath := grayscaleTempPath(outputPath)

		if err := g.convertToGrayscale(inputPath, tempGrayscalePath); err != nil {
			return Result{}, fmt.Errorf("grayscale conversion failed: %w", err)
		}

		actualInputPath = tempGrayscalePath
		defer os.Remove(tempGrayscalePath) // Clean up temp file
	}

	args := buildArgs(outputPath, actualInputPath, compressionLevel, options)

	g.logger.Debug("Executing Ghostscript",
		"input", inputPath,
		"output", outputPath,
		"level", compressionLevel,
		"dpi", options.ImageDPI)

	cmd := exec.Command(g.path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, &ToolError{Tool: "ghostscript", Output: string(output), Err: err}
	}

	// Check if output file was created
	compressedInfo, err := os.Stat(outputPath)
	if errors.Is(err, os.ErrNotExist) {
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

// grayscaleTempPath derives the grayscale pre-pass file next to the final
// output. The extension is preserved whatever its case, so the temp path can
// never collide with the output itself.
func grayscaleTempPath(outputPath string) string {
	extension := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, extension) + "_grayscale_temp" + extension
}

// buildArgs assembles the fixed Ghostscript argument template: device,
// compatibility level, quality preset, resolutions, then explicit output and
// input paths.
func buildArgs(outputPath, inputPath, compressionLevel string, options *Options) []string {
	var pdfSettings string
	switch compressionLevel {
	case "ultra":
		pdfSettings = "/screen"
	case "aggressive":
		pdfSettings = "/ebook"
	default: // good_enough
		pdfSettings = "/printer"
	}

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=" + pdfSettings,
		"-dCompatibilityLevel=" + options.PDFVersion,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dAutoRotatePages=/None",
		"-dColorImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dColorImageResolution=%d", options.ImageDPI),
		"-dGrayImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dGrayImageResolution=%d", options.ImageDPI),
		"-dMonoImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dMonoImageResolution=%d", options.ImageDPI),
		"-dColorConversionStrategy=/sRGB",
		fmt.Sprintf("-dEmbedAllFonts=%t", options.EmbedFonts),
		"-dSubsetFonts=true",
		"-dOptimize=true",
		"-dDownsampleColorImages=true",
		"-dDownsampleGrayImages=true",
		"-dDownsampleMonoImages=true",
		// Force DCT re-encoding so the JPEG quality setting takes effect.
		"-dAutoFilterColorImages=false",
		"-dAutoFilterGrayImages=false",
		fmt.Sprintf("-dJPEGQ=%d", options.ImageQuality),
	}

	// Add ultra-specific options
	if compressionLevel == "ultra" {
		args = append(args, "-dCompressFonts=true", "-dCompressStreams=true")
	}

	// Add metadata removal if enabled
	if options.RemoveMetadata {
		args = append(args, "-dPDFX", "-dUseCIEColor")
	}

	args = append(args, "-sOutputFile="+outputPath, inputPath)
	return args
}

// convertToGrayscale converts a PDF to grayscale
func (g *Ghostscript) convertToGrayscale(inputPath, outputPath string) error {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-sProcessColorModel=DeviceGray",
		"-dOverrideICC",
		"-dUseCIEColor",
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outputPath,
		inputPath,
	}

	cmd := exec.Command(g.path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ToolError{Tool: "ghostscript", Output: string(output), Err: err}
	}

	return nil
}
