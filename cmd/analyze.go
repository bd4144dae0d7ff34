package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nemusake/tdnet-downloader/internal/export"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

var (
	analyzePath string
	analyzeOut  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Produce per-document headline reports from downloaded filings",
	Long: `Reads summary documents from an already-downloaded date directory
and emits one nested report per filing: company info plus headline
income-statement and balance-sheet lines for the current and prior
period. Pass --path to analyze a different directory, or a single
document file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := analyzePath
		if path == "" {
			date, err := resolveDate()
			if err != nil {
				return err
			}
			path = filepath.Join(cfg.Output.Dir, date)
		}

		info, err := os.Stat(path)
		if err != nil {
			return eris.Wrapf(err, "analyze: %s", path)
		}

		var report any
		if info.IsDir() {
			reports, err := xbrl.AnalyzeDirectory(path)
			if err != nil {
				return eris.Wrap(err, "analyze")
			}
			if len(reports) == 0 {
				fmt.Fprintf(os.Stderr, "No filings analyzed under %s.\n", path)
				return nil
			}
			report = reports
		} else {
			single, err := xbrl.Analyze(path)
			if err != nil {
				return eris.Wrap(err, "analyze")
			}
			report = single
		}

		if analyzeOut != "" {
			if err := export.WriteJSONFile(analyzeOut, report); err != nil {
				return eris.Wrap(err, "analyze")
			}
			fmt.Printf("Wrote analysis to %s\n", analyzeOut)
			return nil
		}
		return export.WriteJSON(os.Stdout, report)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePath, "path", "", "directory or document to analyze (default {output.dir}/{date})")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
