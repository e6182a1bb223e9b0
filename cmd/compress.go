package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pdfpress/internal/batch"
	"pdfpress/internal/compression"
	"pdfpress/internal/config"
	"pdfpress/internal/database"
)

var (
	compressConfig    string
	compressRecursive bool
	compressMinSizeMB float64
	compressEngine    string
	compressLevel     string
	compressDPI       int
	compressQuality   int
	compressGrayscale bool
	compressStripMeta bool
	compressReplace   bool
	compressNoBackup  bool
	compressWorkers   int
)

var compressCmd = &cobra.Command{
	Use:   "compress [flags] <directory>",
	Short: "Batch-compress every PDF under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := config.Load(compressConfig)
		if err != nil {
			return err
		}

		logger, closeLog, logPath, err := batch.NewSessionLogger(root)
		if err != nil {
			return err
		}
		defer closeLog()

		var engine compression.Engine
		switch compressEngine {
		case "optimizer":
			engine = compression.NewOptimizer(logger)
		case "ghostscript":
			if err := cfg.ResolveGhostscript(); err != nil {
				return err
			}
			engine = compression.NewGhostscript(cfg.Compression.GhostscriptPath, logger)
		default:
			return fmt.Errorf("unknown engine %q (want ghostscript or optimizer)", compressEngine)
		}

		options := cfg.Compression.Options
		if compressDPI > 0 {
			options.ImageDPI = compressDPI
		}
		if compressQuality > 0 {
			options.ImageQuality = compressQuality
		}
		options.ConvertToGrayscale = compressGrayscale
		options.RemoveMetadata = compressStripMeta

		level := compressLevel
		if level == "" {
			level = cfg.Compression.DefaultLevel
		}

		mode := batch.KeepOriginals
		if compressReplace {
			mode = batch.ReplaceWithBackup
			if compressNoBackup {
				mode = batch.ReplaceWithoutBackup
			}
		}

		workers := compressWorkers
		if workers <= 0 {
			workers = cfg.Compression.Workers
		}

		// SIGINT stops submissions; in-flight compressions finish.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orchestrator := batch.NewOrchestrator(engine, logger)
		summary, err := orchestrator.Run(ctx, batch.Request{
			Root:             root,
			Recursive:        compressRecursive,
			MinSizeBytes:     int64(compressMinSizeMB * 1024 * 1024),
			CompressionLevel: level,
			Options:          &options,
			Mode:             mode,
			Workers:          workers,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, batch.FormatSummary(summary))
		fmt.Fprintf(os.Stdout, "Session log: %s\n", logPath)

		if db, dbErr := database.NewDatabase(cfg.Storage.DatabasePath); dbErr == nil {
			if saveErr := db.SaveSession(summary); saveErr != nil {
				logger.Warn("Failed to persist session summary", "error", saveErr)
			}
		} else {
			logger.Warn("Failed to open session database", "error", dbErr)
		}

		return nil
	},
}

func init() {
	compressCmd.Flags().StringVar(&compressConfig, "config", "config.yaml", "config file path")
	compressCmd.Flags().BoolVarP(&compressRecursive, "recursive", "r", true, "process subdirectories recursively")
	compressCmd.Flags().Float64Var(&compressMinSizeMB, "min-size", 0, "skip files smaller than this many MB")
	compressCmd.Flags().StringVar(&compressEngine, "engine", "ghostscript", "compression engine: ghostscript or optimizer")
	compressCmd.Flags().StringVar(&compressLevel, "level", "", "quality preset: ultra, aggressive, or good_enough")
	compressCmd.Flags().IntVar(&compressDPI, "dpi", 0, "color image DPI (default from config)")
	compressCmd.Flags().IntVar(&compressQuality, "quality", 0, "image quality 1-100 (default from config)")
	compressCmd.Flags().BoolVar(&compressGrayscale, "grayscale", false, "convert to grayscale")
	compressCmd.Flags().BoolVar(&compressStripMeta, "strip-metadata", false, "remove document metadata")
	compressCmd.Flags().BoolVar(&compressReplace, "replace", false, "replace originals with compressed files")
	compressCmd.Flags().BoolVar(&compressNoBackup, "no-backup", false, "with --replace, skip backing up originals")
	compressCmd.Flags().IntVar(&compressWorkers, "workers", 0, "worker pool size (0 = auto)")

	rootCmd.AddCommand(compressCmd)
}
