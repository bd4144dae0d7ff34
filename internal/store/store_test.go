package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleDisclosures() []tdnet.Disclosure {
	return []tdnet.Disclosure{
		{
			Date:    "20250819",
			Time:    "15:30",
			Code:    "13010",
			Name:    "株式会社極洋",
			Title:   "2026年3月期 第1四半期決算短信〔日本基準〕(連結)",
			PDFURL:  "https://www.release.tdnet.info/inbs/140120250819512345.pdf",
			XBRLURL: "https://www.release.tdnet.info/inbs/081220250819512345.zip",
			Place:   "東",
		},
		{
			Date:   "20250819",
			Time:   "09:00",
			Code:   "86970",
			Name:   "株式会社日本取引所グループ",
			Title:  "自己株式の取得状況に関するお知らせ",
			PDFURL: "https://www.release.tdnet.info/inbs/140120250819598765.pdf",
			Place:  "東",
		},
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("RunLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.SaveRun(ctx, "20250819")
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, "20250819", run.Date)
		assert.Equal(t, RunStatusRunning, run.Status)
		assert.Nil(t, run.FinishedAt)

		err = s.CompleteRun(ctx, run.ID, RunCounts{Pages: 3, Total: 250, Unique: 240, Duplicates: 10})
		require.NoError(t, err)

		runs, err := s.ListRuns(ctx, RunFilter{Date: "20250819"})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		got := runs[0]
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, RunStatusComplete, got.Status)
		assert.Equal(t, 3, got.Pages)
		assert.Equal(t, 250, got.Total)
		assert.Equal(t, 240, got.Unique)
		assert.Equal(t, 10, got.Duplicates)
		assert.Empty(t, got.Error)
		require.NotNil(t, got.FinishedAt)
		assert.False(t, got.FinishedAt.Before(got.StartedAt))
	})

	t.Run("CompleteRunPartial", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.SaveRun(ctx, "20250819")
		require.NoError(t, err)

		err = s.CompleteRun(ctx, run.ID, RunCounts{Pages: 2, Total: 150, Unique: 150, Partial: true})
		require.NoError(t, err)

		runs, err := s.ListRuns(ctx, RunFilter{Date: "20250819"})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, RunStatusPartial, runs[0].Status)
	})

	t.Run("FailRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.SaveRun(ctx, "20250819")
		require.NoError(t, err)

		err = s.FailRun(ctx, run.ID, "tdnet: fetch page 1: status 503")
		require.NoError(t, err)

		runs, err := s.ListRuns(ctx, RunFilter{Date: "20250819"})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, RunStatusFailed, runs[0].Status)
		assert.Contains(t, runs[0].Error, "status 503")
		assert.NotNil(t, runs[0].FinishedAt)
	})

	t.Run("CompleteRunNotFound", func(t *testing.T) {
		s := newStore(t)

		err := s.CompleteRun(context.Background(), "no-such-run", RunCounts{Pages: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run not found")
	})

	t.Run("ListRunsFilterAndOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.SaveRun(ctx, "20250818")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		second, err := s.SaveRun(ctx, "20250819")
		require.NoError(t, err)

		byDate, err := s.ListRuns(ctx, RunFilter{Date: "20250819"})
		require.NoError(t, err)
		require.Len(t, byDate, 1)
		assert.Equal(t, second.ID, byDate[0].ID)

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID) // newest first
		assert.Equal(t, first.ID, all[1].ID)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("SaveDisclosuresUpsert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		items := sampleDisclosures()
		n, err := s.SaveDisclosures(ctx, "20250819", items)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		// A second crawl of the same date revises a title; the row
		// count must not grow.
		items[0].Title = items[0].Title + "(訂正)"
		_, err = s.SaveDisclosures(ctx, "20250819", items)
		require.NoError(t, err)

		got, err := s.ListDisclosures(ctx, "20250819")
		require.NoError(t, err)
		require.Len(t, got, 2)

		// Ordered by announcement time.
		assert.Equal(t, "86970", got[0].Code)
		assert.Equal(t, "13010", got[1].Code)
		assert.Contains(t, got[1].Title, "(訂正)")
		assert.Equal(t, items[0].XBRLURL, got[1].XBRLURL)
		assert.Empty(t, got[0].XBRLURL)
	})

	t.Run("SaveDisclosuresEmpty", func(t *testing.T) {
		s := newStore(t)

		n, err := s.SaveDisclosures(context.Background(), "20250819", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("ListDisclosuresEmpty", func(t *testing.T) {
		s := newStore(t)

		got, err := s.ListDisclosures(context.Background(), "19990101")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ProfileRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		profile := xbrl.Profile{
			"date":                    xbrl.TextValue("2025-08-19"),
			"securities_code":         xbrl.TextValue("13010"),
			"company_name":            xbrl.TextValue("株式会社極洋"),
			"net_sales_current":       xbrl.NumberValue(12345),
			"eps_current":             xbrl.NumberValue(123.45),
			"ordinary_income_current": xbrl.NumberValue(-890),
		}

		err := s.SaveProfile(ctx, "20250819", "13010", profile)
		require.NoError(t, err)

		profiles, err := s.ListProfiles(ctx, "20250819")
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, profile, profiles[0])

		other, err := s.ListProfiles(ctx, "20250820")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("ProfileLastWriterWins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := xbrl.Profile{
			"company_name":      xbrl.TextValue("株式会社サンプル"),
			"net_sales_current": xbrl.NumberValue(100),
		}
		second := xbrl.Profile{
			"company_name":         xbrl.TextValue("株式会社サンプルホールディングス"),
			"total_assets_current": xbrl.NumberValue(500),
		}

		require.NoError(t, s.SaveProfile(ctx, "20250819", "12340", first))
		require.NoError(t, s.SaveProfile(ctx, "20250819", "12340", second))

		profiles, err := s.ListProfiles(ctx, "20250819")
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, second, profiles[0])
		assert.NotContains(t, profiles[0], "net_sales_current")
	})

	t.Run("ListProfilesSorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.SaveProfile(ctx, "20250819", "86970", xbrl.Profile{
			"securities_code": xbrl.TextValue("86970"),
			"company_name":    xbrl.TextValue("株式会社日本取引所グループ"),
		}))
		require.NoError(t, s.SaveProfile(ctx, "20250819", "13010", xbrl.Profile{
			"securities_code": xbrl.TextValue("13010"),
			"company_name":    xbrl.TextValue("株式会社極洋"),
		}))

		profiles, err := s.ListProfiles(ctx, "20250819")
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		assert.Equal(t, "13010", profiles[0].SecuritiesCode())
		assert.Equal(t, "86970", profiles[1].SecuritiesCode())
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
