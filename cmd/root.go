package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/config"
)

var cfg *config.Config

// dateFlag is shared by every subcommand that operates on one
// disclosure date.
var dateFlag string

var rootCmd = &cobra.Command{
	Use:   "tdnet",
	Short: "TDnet disclosure downloader and XBRL extractor",
	Long:  "Crawls TDnet disclosure listings, downloads XBRL filing packages, extracts tagged financial facts, and writes flat per-company records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dateFlag, "date", "d", "", "disclosure date: YYYYMMDD, YYYY-MM-DD, or YYYY/MM/DD (default today, JST)")
}
