package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nemusake/tdnet-downloader/internal/fetcher"
	"github.com/nemusake/tdnet-downloader/internal/store"
	"github.com/nemusake/tdnet-downloader/internal/tdnet"
)

// resolveDate canonicalizes the --date flag, defaulting to today on
// the exchange's wall clock.
func resolveDate() (string, error) {
	if dateFlag == "" {
		return tdnet.TodayJST(), nil
	}
	return tdnet.CanonicalDate(dateFlag)
}

// initFetcher builds the rate-limited portal fetcher from config.
func initFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.TDnet.UserAgent,
		Timeout:      cfg.TDnet.Timeout,
		MaxRetries:   cfg.TDnet.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// initCrawler builds a listing crawler over f from config.
func initCrawler(f fetcher.Fetcher) *tdnet.Crawler {
	return tdnet.NewCrawler(f, tdnet.CrawlerOptions{
		BaseURL:     cfg.TDnet.BaseURL,
		RowsPerPage: cfg.TDnet.RowsPerPage,
		PageCap:     cfg.TDnet.PageCap,
		PageDelay:   cfg.TDnet.PageDelay,
	})
}

// initStore opens the configured store backend. A driver of "off"
// yields (nil, nil); commands that can work without persistence treat
// a nil store as disabled.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "off":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = "tdnet.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN, &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore is initStore plus migration.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil || st == nil {
		return st, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// crawlListing runs the full paginated crawl for date and records the
// run and its disclosures in st when persistence is enabled. A crawl
// cut short by a transport error is still recorded, as partial.
func crawlListing(ctx context.Context, c *tdnet.Crawler, st store.Store, date string) (*tdnet.CrawlResult, error) {
	var runID string
	if st != nil {
		run, err := st.SaveRun(ctx, date)
		if err != nil {
			return nil, eris.Wrap(err, "record crawl run")
		}
		runID = run.ID
	}

	res, err := c.Crawl(ctx, date)
	if err != nil {
		if st != nil {
			if failErr := st.FailRun(ctx, runID, err.Error()); failErr != nil {
				zap.L().Warn("record failed crawl run", zap.Error(failErr))
			}
		}
		return nil, err
	}

	if st != nil {
		if _, err := st.SaveDisclosures(ctx, date, res.Disclosures); err != nil {
			zap.L().Warn("persist disclosures", zap.Error(err))
		}
		counts := store.RunCounts{
			Pages:      res.Stats.PagesScanned,
			Total:      res.Stats.TotalRows,
			Unique:     res.Stats.Unique,
			Duplicates: res.Stats.Duplicates,
			Partial:    res.Stats.Partial,
		}
		if err := st.CompleteRun(ctx, runID, counts); err != nil {
			zap.L().Warn("record crawl run completion", zap.Error(err))
		}
	}

	return res, nil
}
