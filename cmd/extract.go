package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/export"
	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

var (
	extractFilter   string
	extractLimit    int
	extractOut      string
	extractXLSX     string
	extractAllItems bool
	extractKeep     bool
	extractWorkers  int
	extractKeywords string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download filings and extract financial data to CSV",
	Long: `Runs the full pipeline for a date: crawl every listing page, filter
by title, download and unpack each filing package, extract tagged
financial facts into one flat record per company, and write them as
CSV (and optionally XLSX).

Downloaded files are removed after extraction unless --keep-files is
set. When nothing could be extracted they are kept for inspection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		date, err := resolveDate()
		if err != nil {
			return err
		}
		filter := tdnet.Filter(extractFilter)
		if !filter.Valid() {
			return eris.Errorf("extract: unknown filter %q (want all, kessan, or gyoseki)", extractFilter)
		}
		if extractKeywords != "" {
			kw, err := xbrl.LoadKeywords(extractKeywords)
			if err != nil {
				return err
			}
			xbrl.ExtendKeywords(kw)
		}

		f := initFetcher()
		crawler := initCrawler(f)

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		// Step 1: listing crawl.
		res, err := crawlListing(ctx, crawler, st, date)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		records := filter.Apply(res.Disclosures)
		if len(records) == 0 {
			fmt.Printf("No disclosures match filter %q on %s.\n", filter, date)
			return nil
		}

		// Step 2: download and unpack filing packages.
		saveDir := filepath.Join(cfg.Output.Dir, date)
		dl := tdnet.NewDownloader(f, cfg.TDnet.DownloadDelay)
		sum, err := dl.DownloadAll(ctx, records, saveDir, extractLimit)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		zap.L().Info("downloads complete",
			zap.Int("succeeded", sum.Succeeded),
			zap.Int("failed", sum.Failed),
		)
		if sum.Succeeded == 0 {
			fmt.Fprintf(os.Stderr, "No filings downloaded for %s (%d failed).\n", date, sum.Failed)
			return nil
		}

		// Step 3: extract one flat record per filing.
		workers := extractWorkers
		if workers <= 0 {
			workers = cfg.Extract.Workers
		}
		extractor := xbrl.NewExtractor(workers)
		profiles, stats, err := extractor.ExtractDirectory(ctx, saveDir)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		if len(profiles) == 0 {
			fmt.Fprintf(os.Stderr, "No financial data extracted from %d filings; downloads kept in %s.\n",
				stats.Filings, saveDir)
			return nil
		}

		if st != nil {
			for _, p := range profiles {
				if err := st.SaveProfile(ctx, date, p.SecuritiesCode(), p); err != nil {
					zap.L().Warn("persist profile",
						zap.String("code", p.SecuritiesCode()),
						zap.Error(err),
					)
				}
			}
		}

		// Step 4: write output files.
		outPath := extractOut
		if outPath == "" {
			outPath = fmt.Sprintf("financial_data_%s.csv", date)
		}
		opts := export.Options{AllItems: extractAllItems}
		if err := export.WriteCSVFile(outPath, profiles, opts); err != nil {
			return eris.Wrap(err, "extract")
		}
		if extractXLSX != "" {
			if err := export.WriteXLSXFile(extractXLSX, profiles, opts); err != nil {
				return eris.Wrap(err, "extract")
			}
		}

		// Step 5: clean up downloads.
		if !extractKeep {
			if err := os.RemoveAll(saveDir); err != nil {
				zap.L().Warn("cleanup failed", zap.String("dir", saveDir), zap.Error(err))
			}
		}

		fmt.Printf("Extracted %d/%d filings to %s", stats.Extracted, stats.Filings, outPath)
		if extractXLSX != "" {
			fmt.Printf(" and %s", extractXLSX)
		}
		if skipped := stats.NoDocument + stats.NoCompany + stats.Failed; skipped > 0 {
			fmt.Printf(" (%d skipped)", skipped)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFilter, "filter", "all", "title filter: all, kessan, or gyoseki")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "max filings to process (0 = all)")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "CSV output path (default financial_data_{date}.csv)")
	extractCmd.Flags().StringVar(&extractXLSX, "xlsx", "", "also write an XLSX workbook to this path")
	extractCmd.Flags().BoolVar(&extractAllItems, "all-items", false, "keep non-financial items in the output")
	extractCmd.Flags().BoolVar(&extractKeep, "keep-files", false, "keep downloaded files after extraction")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "parallel filing parsers (default from config)")
	extractCmd.Flags().StringVar(&extractKeywords, "keywords", "", "YAML file with extra classifier keywords")
	rootCmd.AddCommand(extractCmd)
}
