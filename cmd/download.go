package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
)

var (
	downloadFilter string
	downloadLimit  int
	downloadOut    string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and unpack XBRL filing packages for a date",
	Long: `Crawls every listing page for a date, filters the XBRL-bearing
disclosures by title, and downloads each filing's package into
{out}/{date}/, unpacking it alongside. Corrupt archives are kept on
disk for inspection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("crawl"); err != nil {
			return err
		}
		date, err := resolveDate()
		if err != nil {
			return err
		}
		filter := tdnet.Filter(downloadFilter)
		if !filter.Valid() {
			return eris.Errorf("download: unknown filter %q (want all, kessan, or gyoseki)", downloadFilter)
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

		res, err := crawlListing(ctx, crawler, st, date)
		if err != nil {
			return eris.Wrap(err, "download")
		}

		records := filter.Apply(res.Disclosures)
		if len(records) == 0 {
			fmt.Printf("No disclosures match filter %q on %s.\n", filter, date)
			return nil
		}

		outDir := downloadOut
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		saveDir := filepath.Join(outDir, date)

		dl := tdnet.NewDownloader(f, cfg.TDnet.DownloadDelay)
		sum, err := dl.DownloadAll(ctx, records, saveDir, downloadLimit)
		if err != nil {
			return eris.Wrap(err, "download")
		}

		zap.L().Info("download batch complete",
			zap.String("date", date),
			zap.Int("requested", sum.Requested),
			zap.Int("succeeded", sum.Succeeded),
			zap.Int("failed", sum.Failed),
			zap.Int("extract_failed", sum.ExtractFailed),
		)
		fmt.Printf("Downloaded %d/%d filings to %s", sum.Succeeded, sum.Requested, saveDir)
		if sum.ExtractFailed > 0 {
			fmt.Printf(" (%d archives could not be unpacked; retained for inspection)", sum.ExtractFailed)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadFilter, "filter", "all", "title filter: all, kessan, or gyoseki")
	downloadCmd.Flags().IntVar(&downloadLimit, "limit", 0, "max filings to download (0 = all)")
	downloadCmd.Flags().StringVar(&downloadOut, "out", "", "download directory (default from config)")
	rootCmd.AddCommand(downloadCmd)
}
