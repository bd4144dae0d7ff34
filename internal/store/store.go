package store

import (
	"context"
	"time"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// RunStatus tracks the lifecycle of a listing crawl.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial"
	RunStatusFailed   RunStatus = "failed"
)

// CrawlRun records one crawl of the disclosure listing for a date.
type CrawlRun struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"` // YYYYMMDD
	Status     RunStatus  `json:"status"`
	Pages      int        `json:"pages"`
	Total      int        `json:"total"`
	Unique     int        `json:"unique"`
	Duplicates int        `json:"duplicates"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunCounts carries the final tallies of a finished crawl. Partial
// marks a crawl cut short by a transport error after some pages had
// already been collected.
type RunCounts struct {
	Pages      int
	Total      int
	Unique     int
	Duplicates int
	Partial    bool
}

// RunFilter specifies criteria for listing crawl runs.
type RunFilter struct {
	Date  string `json:"date,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for crawl runs, disclosure
// listings, and extracted company profiles.
type Store interface {
	// Runs
	SaveRun(ctx context.Context, date string) (*CrawlRun, error)
	CompleteRun(ctx context.Context, runID string, counts RunCounts) error
	FailRun(ctx context.Context, runID string, errText string) error
	ListRuns(ctx context.Context, filter RunFilter) ([]CrawlRun, error)

	// Disclosures
	SaveDisclosures(ctx context.Context, date string, items []tdnet.Disclosure) (int64, error)
	ListDisclosures(ctx context.Context, date string) ([]tdnet.Disclosure, error)

	// Profiles
	SaveProfile(ctx context.Context, date, securitiesCode string, profile xbrl.Profile) error
	ListProfiles(ctx context.Context, date string) ([]xbrl.Profile, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
