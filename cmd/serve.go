package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pdfpress/internal/api"
	"pdfpress/internal/config"
	"pdfpress/internal/database"
	"pdfpress/internal/storage"
)

var serveConfig string

const sweepInterval = 30 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Run the file storage service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfig)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		db, err := database.NewDatabase(cfg.Storage.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		store, err := storage.NewStore(cfg.Storage.Dir, db, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		retention := time.Duration(cfg.Storage.RetentionHours) * time.Hour
		go store.RunSweeper(ctx, sweepInterval, retention)

		gin.SetMode(gin.ReleaseMode)
		r := gin.Default()
		api.RegisterHandlers(r, store)

		logger.Info("Server starting", "port", cfg.Server.Port, "storage_dir", cfg.Storage.Dir, "retention", retention)
		return r.Run(fmt.Sprintf(":%d", cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(serveCmd)
}
