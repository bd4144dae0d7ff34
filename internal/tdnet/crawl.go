package tdnet

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nemusake/tdnet-downloader/internal/fetcher"
)

var dateRe = regexp.MustCompile(`^\d{8}$`)

func errInvalidDate(date string) error {
	return eris.Errorf("crawl: date must be YYYYMMDD, got %q", date)
}

// CrawlerOptions configures a listing crawl.
type CrawlerOptions struct {
	BaseURL     string
	RowsPerPage int // rows the portal renders per page
	PageCap     int // probe ceiling when the count banner is unparsable
	PageDelay   time.Duration
}

// Crawler enumerates the disclosure listing for a date, page by page,
// and deduplicates rows by identity key across the whole run.
type Crawler struct {
	fetcher fetcher.Fetcher
	opts    CrawlerOptions
	pager   *rate.Limiter
}

// NewCrawler creates a Crawler over the given fetcher.
func NewCrawler(f fetcher.Fetcher, opts CrawlerOptions) *Crawler {
	if opts.RowsPerPage <= 0 {
		opts.RowsPerPage = 100
	}
	if opts.PageCap <= 0 {
		opts.PageCap = 20
	}
	limit := rate.Inf
	if opts.PageDelay > 0 {
		limit = rate.Every(opts.PageDelay)
	}
	return &Crawler{
		fetcher: f,
		opts:    opts,
		pager:   rate.NewLimiter(limit, 1),
	}
}

// CrawlStats summarizes one crawl run.
type CrawlStats struct {
	TotalCount    int  `json:"total_count"`    // banner 全n件; 0 when unknown
	ExpectedPages int  `json:"expected_pages"` // derived from the banner; 0 when probing
	PagesScanned  int  `json:"pages_scanned"`
	TotalRows     int  `json:"total_rows"` // every row seen, XBRL or not
	XBRLRows      int  `json:"xbrl_rows"`  // XBRL-bearing rows before dedup
	Unique        int  `json:"unique"`
	Duplicates    int  `json:"duplicates"`
	Partial       bool `json:"partial"`
	FailedPage    int  `json:"failed_page,omitempty"`
}

// CrawlResult is the deduplicated XBRL-bearing disclosure set for one date.
type CrawlResult struct {
	Date        string       `json:"date"`
	Disclosures []Disclosure `json:"disclosures"`
	Stats       CrawlStats   `json:"stats"`
}

// Crawl fetches and parses listing pages for date (YYYYMMDD) until the
// expected page count is reached, a page comes back empty or 404, or the
// probe ceiling is hit. A transport failure mid-run stops the crawl and
// returns what was accumulated, with Stats.Partial set; it is not an error.
func (c *Crawler) Crawl(ctx context.Context, date string) (*CrawlResult, error) {
	if !dateRe.MatchString(date) {
		return nil, errInvalidDate(date)
	}

	res := &CrawlResult{Date: date}
	seen := make(map[string]struct{})

	maxPages := c.opts.PageCap
	for page := 1; page <= maxPages; page++ {
		if err := c.pager.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "crawl: rate wait")
		}

		p, err := c.fetchPage(ctx, date, page)
		if err != nil {
			if errors.Is(err, fetcher.ErrNotFound) {
				zap.L().Info("listing page not found, end of data",
					zap.String("date", date),
					zap.Int("page", page),
				)
				break
			}
			zap.L().Warn("listing page failed, returning partial results",
				zap.String("date", date),
				zap.Int("page", page),
				zap.Error(err),
			)
			res.Stats.Partial = true
			res.Stats.FailedPage = page
			break
		}

		if len(p.Rows) == 0 {
			zap.L().Info("empty listing page, end of data",
				zap.String("date", date),
				zap.Int("page", page),
			)
			break
		}

		res.Stats.PagesScanned++
		res.Stats.TotalRows += len(p.Rows)

		if page == 1 {
			if p.TotalCount > 0 {
				res.Stats.TotalCount = p.TotalCount
				res.Stats.ExpectedPages = (p.TotalCount + c.opts.RowsPerPage - 1) / c.opts.RowsPerPage
				maxPages = res.Stats.ExpectedPages
				zap.L().Info("listing size known",
					zap.String("date", date),
					zap.Int("total_count", p.TotalCount),
					zap.Int("expected_pages", maxPages),
				)
			} else {
				zap.L().Info("count banner unparsable, probing page by page",
					zap.String("date", date),
					zap.Int("page_cap", maxPages),
				)
			}
		}

		for _, d := range p.XBRLRows() {
			res.Stats.XBRLRows++
			d.Date = date
			key := d.IdentityKey()
			if _, dup := seen[key]; dup {
				res.Stats.Duplicates++
				zap.L().Warn("duplicate disclosure identity",
					zap.Int("page", page),
					zap.String("code", d.Code),
					zap.String("key", key),
				)
				continue
			}
			seen[key] = struct{}{}
			res.Disclosures = append(res.Disclosures, d)
		}
	}

	res.Stats.Unique = len(res.Disclosures)

	zap.L().Info("crawl finished",
		zap.String("date", date),
		zap.Int("pages", res.Stats.PagesScanned),
		zap.Int("unique", res.Stats.Unique),
		zap.Int("duplicates", res.Stats.Duplicates),
		zap.Bool("partial", res.Stats.Partial),
	)

	return res, nil
}

// FetchPage fetches and parses a single listing page, with no dedup
// accounting. A missing page surfaces as fetcher.ErrNotFound.
func (c *Crawler) FetchPage(ctx context.Context, date string, page int) (*Page, error) {
	if !dateRe.MatchString(date) {
		return nil, errInvalidDate(date)
	}
	if page < 1 {
		page = 1
	}
	if err := c.pager.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "crawl: rate wait")
	}
	return c.fetchPage(ctx, date, page)
}

func (c *Crawler) fetchPage(ctx context.Context, date string, page int) (*Page, error) {
	u := PageURL(c.opts.BaseURL, date, page)
	body, err := c.fetcher.Download(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	p, err := ParseListing(body, c.opts.BaseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: page %d", page)
	}
	p.Number = page
	return p, nil
}
