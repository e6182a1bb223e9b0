package compression

import "context"

// Options holds advanced compression options for PDF processing
type Options struct {
	ImageDPI           int    `json:"image_dpi" yaml:"image_dpi"`
	ImageQuality       int    `json:"image_quality" yaml:"image_quality"`
	PDFVersion         string `json:"pdf_version" yaml:"pdf_version"`
	RemoveMetadata     bool   `json:"remove_metadata" yaml:"remove_metadata"`
	EmbedFonts         bool   `json:"embed_fonts" yaml:"embed_fonts"`
	ConvertToGrayscale bool   `json:"convert_to_grayscale" yaml:"convert_to_grayscale"`
}

// DefaultOptions returns default compression options
func DefaultOptions() Options {
	return Options{
		ImageDPI:       150,
		ImageQuality:   85,
		PDFVersion:     "1.4",
		RemoveMetadata: false,
		EmbedFonts:     true,
	}
}

// applyDefaults fills in required fields left empty by the caller.
func (o *Options) applyDefaults() {
	if o.PDFVersion == "" {
		o.PDFVersion = "1.4"
	}
	if o.ImageDPI <= 0 {
		o.ImageDPI = 150
	}
	if o.ImageQuality <= 0 {
		o.ImageQuality = 85
	}
}

// Result reports the byte sizes of a single completed compression.
type Result struct {
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Ratio          float64 `json:"ratio"`
}

// SavedRatio returns the saved fraction, defined as 0 when the original
// size is 0.
func SavedRatio(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	return 1 - float64(compressed)/float64(original)
}

// Engine compresses one PDF file into exactly one output file. The input
// file is never modified. Implementations must be safe to call concurrently
// for distinct input/output pairs.
type Engine interface {
	Compress(ctx context.Context, inputPath, outputPath, compressionLevel string, options *Options) (Result, error)
	Name() string
}
