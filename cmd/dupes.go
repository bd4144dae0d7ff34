package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
)

var (
	dupesMaxPages int
	dupesJSON     bool
)

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Report duplicate disclosure identities across listing pages",
	Long: `Walks the listing pages for a date and reports, per page, how many
identity keys were already seen on earlier pages. The portal should
never repeat a filing across pages, so any duplicate is worth a look.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("crawl"); err != nil {
			return err
		}
		date, err := resolveDate()
		if err != nil {
			return err
		}

		crawler := initCrawler(initFetcher())
		report, err := crawler.CheckDuplicates(ctx, date, dupesMaxPages)
		if err != nil {
			return eris.Wrap(err, "dupes")
		}

		if dupesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		if report.PagesScanned == 0 {
			fmt.Fprintln(os.Stderr, "No listing pages found.")
			return nil
		}
		formatDupeReport(os.Stdout, report)
		return nil
	},
}

func init() {
	dupesCmd.Flags().IntVar(&dupesMaxPages, "max-pages", 0, "pages to scan (0 = configured page cap)")
	dupesCmd.Flags().BoolVar(&dupesJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(dupesCmd)
}

// formatDupeReport writes per-page duplicate accounting and totals to out.
func formatDupeReport(out io.Writer, report *tdnet.DupeReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PAGE\tROWS\tXBRL\tNEW\tDUPES")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t---\t-----")
	for _, p := range report.Pages {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n",
			p.Page, p.Rows, p.XBRLCount, p.NewKeys, p.Duplicates)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nPages scanned: %d\n", report.PagesScanned)
	_, _ = fmt.Fprintf(out, "Unique XBRL records: %d\n", report.UniqueXBRL)
	_, _ = fmt.Fprintf(out, "Duplicates: %d\n", report.TotalDuplicates)

	if report.TotalDuplicates > 0 {
		_, _ = fmt.Fprintln(out, "\nDuplicate keys:")
		for _, p := range report.Pages {
			for _, key := range p.DuplicateKeys {
				_, _ = fmt.Fprintf(out, "  page %d: %s\n", p.Page, key)
			}
		}
	}
}
