package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pdfpress",
	Short: "pdfpress - batch PDF compression",
	Long:  "pdfpress batch-compresses PDF trees via Ghostscript or a built-in optimizer, and serves a small file storage API for compression jobs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
