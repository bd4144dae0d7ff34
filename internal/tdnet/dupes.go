package tdnet

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/fetcher"
)

// PageDupes holds per-page duplicate accounting for one listing page.
type PageDupes struct {
	Page          int      `json:"page"`
	Rows          int      `json:"rows"`
	XBRLCount     int      `json:"xbrl_count"`
	NewKeys       int      `json:"new_keys"`
	Duplicates    int      `json:"duplicates"`
	DuplicateKeys []string `json:"duplicate_keys,omitempty"`
}

// DupeReport aggregates duplicate accounting across the pages of one date.
// Under normal portal behavior every page carries distinct filings, so a
// non-zero duplicate count is a signal worth surfacing.
type DupeReport struct {
	Date            string      `json:"date"`
	PagesScanned    int         `json:"pages_scanned"`
	TotalRows       int         `json:"total_rows"`
	TotalXBRL       int         `json:"total_xbrl"`
	UniqueXBRL      int         `json:"unique_xbrl"`
	TotalDuplicates int         `json:"total_duplicates"`
	Pages           []PageDupes `json:"pages"`
}

// CheckDuplicates walks listing pages for date and reports, per page, how
// many identity keys were already seen on earlier pages. It stops at the
// first empty or missing page, or after maxPages.
func (c *Crawler) CheckDuplicates(ctx context.Context, date string, maxPages int) (*DupeReport, error) {
	if !dateRe.MatchString(date) {
		return nil, errInvalidDate(date)
	}
	if maxPages <= 0 {
		maxPages = c.opts.PageCap
	}

	report := &DupeReport{Date: date}
	seen := make(map[string]struct{})

	for page := 1; page <= maxPages; page++ {
		if err := c.pager.Wait(ctx); err != nil {
			return nil, err
		}

		p, err := c.fetchPage(ctx, date, page)
		if err != nil {
			if errors.Is(err, fetcher.ErrNotFound) {
				break
			}
			zap.L().Warn("duplicate check stopped early",
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}
		if len(p.Rows) == 0 {
			break
		}

		pd := PageDupes{Page: page, Rows: len(p.Rows)}
		for _, d := range p.XBRLRows() {
			pd.XBRLCount++
			key := d.IdentityKey()
			if _, dup := seen[key]; dup {
				pd.Duplicates++
				pd.DuplicateKeys = append(pd.DuplicateKeys, key)
				continue
			}
			seen[key] = struct{}{}
			pd.NewKeys++
		}

		report.Pages = append(report.Pages, pd)
		report.PagesScanned++
		report.TotalRows += pd.Rows
		report.TotalXBRL += pd.XBRLCount
		report.TotalDuplicates += pd.Duplicates
	}

	report.UniqueXBRL = len(seen)
	return report, nil
}
