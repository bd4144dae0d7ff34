package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
)

var (
	listFilter   string
	listPage     int
	listAllPages bool
	listLimit    int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List XBRL-bearing disclosures for a date",
	Long: `Fetches the TDnet disclosure listing for a date and prints the rows
that carry an XBRL package.

By default only one page is read (--page, first by default);
--all-pages walks every page with cross-page deduplication and, when a
store is configured, records the crawl run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("crawl"); err != nil {
			return err
		}
		date, err := resolveDate()
		if err != nil {
			return err
		}
		filter := tdnet.Filter(listFilter)
		if !filter.Valid() {
			return eris.Errorf("list: unknown filter %q (want all, kessan, or gyoseki)", listFilter)
		}

		crawler := initCrawler(initFetcher())

		var records []tdnet.Disclosure
		if listAllPages {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close() //nolint:errcheck
			}

			res, err := crawlListing(ctx, crawler, st, date)
			if err != nil {
				return eris.Wrap(err, "list")
			}
			if res.Stats.Partial {
				fmt.Fprintf(os.Stderr, "Warning: crawl incomplete, page %d failed; showing %d records collected so far.\n",
					res.Stats.FailedPage, res.Stats.Unique)
			}
			records = res.Disclosures
		} else {
			page, err := crawler.FetchPage(ctx, date, listPage)
			if err != nil {
				return eris.Wrap(err, "list")
			}
			records = page.XBRLRows()
			for i := range records {
				records[i].Date = date
			}
		}

		records = filter.Apply(records)
		if listLimit > 0 && len(records) > listLimit {
			records = records[:listLimit]
		}

		zap.L().Info("listing fetched",
			zap.String("date", date),
			zap.String("filter", string(filter)),
			zap.Int("records", len(records)),
		)

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No disclosures found.")
			return nil
		}
		formatDisclosures(os.Stdout, records)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "title filter: all, kessan, or gyoseki")
	listCmd.Flags().IntVar(&listPage, "page", 1, "listing page to read")
	listCmd.Flags().BoolVar(&listAllPages, "all-pages", false, "walk every page with cross-page deduplication")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "max records to print (0 = all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(listCmd)
}

// formatDisclosures writes a tabular disclosure listing to out.
func formatDisclosures(out io.Writer, records []tdnet.Disclosure) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tCODE\tNAME\tTITLE\tPLACE")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t-----\t-----")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Time,
			r.Code,
			truncate(r.Name, 20),
			truncate(r.Title, 50),
			r.Place,
		)
	}
	_ = w.Flush()
}

// truncate shortens s to max runes for compact display.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
