package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/nemusake/tdnet-downloader/internal/db"
	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// disclosureColumns is the column order used for bulk disclosure
// upserts. It must match the disclosures table definition.
var disclosureColumns = []string{
	"date", "identity_key", "disclosed_at", "code", "name",
	"title", "pdf_url", "xbrl_url", "market", "history",
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":       `INSERT INTO crawl_runs (id, date, status, started_at) VALUES ($1, $2, $3, $4)`,
	"complete_run":     `UPDATE crawl_runs SET status = $1, pages = $2, total = $3, unique_count = $4, dup_count = $5, finished_at = $6 WHERE id = $7`,
	"fail_run":         `UPDATE crawl_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
	"list_disclosures": `SELECT date, disclosed_at, code, name, title, pdf_url, xbrl_url, market, history FROM disclosures WHERE date = $1 ORDER BY disclosed_at, identity_key`,
	"save_profile":     `INSERT INTO profiles (date, securities_code, company_name, fields, extracted_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (date, securities_code) DO UPDATE SET company_name = $3, fields = $4, extracted_at = $5`,
	"list_profiles":    `SELECT fields FROM profiles WHERE date = $1 ORDER BY securities_code`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS crawl_runs (
	id           TEXT PRIMARY KEY,
	date         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	pages        INTEGER NOT NULL DEFAULT 0,
	total        INTEGER NOT NULL DEFAULT 0,
	unique_count INTEGER NOT NULL DEFAULT 0,
	dup_count    INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS disclosures (
	date         TEXT NOT NULL,
	identity_key TEXT NOT NULL,
	disclosed_at TEXT NOT NULL DEFAULT '',
	code         TEXT NOT NULL DEFAULT '',
	name         TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	pdf_url      TEXT NOT NULL DEFAULT '',
	xbrl_url     TEXT NOT NULL DEFAULT '',
	market       TEXT NOT NULL DEFAULT '',
	history      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (date, identity_key)
);

CREATE TABLE IF NOT EXISTS profiles (
	date            TEXT NOT NULL,
	securities_code TEXT NOT NULL,
	company_name    TEXT NOT NULL DEFAULT '',
	fields          JSONB NOT NULL,
	extracted_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (date, securities_code)
);

CREATE INDEX IF NOT EXISTS idx_crawl_runs_date ON crawl_runs(date);
CREATE INDEX IF NOT EXISTS idx_crawl_runs_started_at ON crawl_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_disclosures_code ON disclosures(code);
CREATE INDEX IF NOT EXISTS idx_profiles_date ON profiles(date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, date string) (*CrawlRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO crawl_runs (id, date, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, date, string(RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &CrawlRun{
		ID:        id,
		Date:      date,
		Status:    RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, counts RunCounts) error {
	status := RunStatusComplete
	if counts.Partial {
		status = RunStatusPartial
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE crawl_runs SET status = $1, pages = $2, total = $3, unique_count = $4, dup_count = $5, finished_at = $6 WHERE id = $7`,
		string(status), counts.Pages, counts.Total, counts.Unique, counts.Duplicates, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errText string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE crawl_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(RunStatusFailed), errText, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]CrawlRun, error) {
	query := `SELECT id, date, status, pages, total, unique_count, dup_count, error, started_at, finished_at FROM crawl_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Date != "" {
		query += fmt.Sprintf(` AND date = $%d`, argIdx)
		args = append(args, filter.Date)
		argIdx++
	}
	query += ` ORDER BY started_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []CrawlRun
	for rows.Next() {
		var r CrawlRun
		var status string
		var errText *string
		var finishedAt *time.Time

		if err := rows.Scan(&r.ID, &r.Date, &status, &r.Pages, &r.Total, &r.Unique, &r.Duplicates, &errText, &r.StartedAt, &finishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = RunStatus(status)
		if errText != nil {
			r.Error = *errText
		}
		r.FinishedAt = finishedAt
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveDisclosures(ctx context.Context, date string, items []tdnet.Disclosure) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(items))
	for _, d := range items {
		rows = append(rows, []any{
			date, d.IdentityKey(), d.Time, d.Code, d.Name,
			d.Title, d.PDFURL, d.XBRLURL, d.Place, d.History,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "disclosures",
		Columns:      disclosureColumns,
		ConflictKeys: []string{"date", "identity_key"},
	}, rows)
	return n, eris.Wrap(err, "postgres: save disclosures")
}

func (s *PostgresStore) ListDisclosures(ctx context.Context, date string) ([]tdnet.Disclosure, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, disclosed_at, code, name, title, pdf_url, xbrl_url, market, history
		 FROM disclosures WHERE date = $1 ORDER BY disclosed_at, identity_key`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list disclosures")
	}
	defer rows.Close()

	var items []tdnet.Disclosure
	for rows.Next() {
		var d tdnet.Disclosure
		if err := rows.Scan(&d.Date, &d.Time, &d.Code, &d.Name, &d.Title, &d.PDFURL, &d.XBRLURL, &d.Place, &d.History); err != nil {
			return nil, eris.Wrap(err, "postgres: scan disclosure")
		}
		items = append(items, d)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list disclosures iterate")
}

func (s *PostgresStore) SaveProfile(ctx context.Context, date, securitiesCode string, profile xbrl.Profile) error {
	fields, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (date, securities_code, company_name, fields, extracted_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (date, securities_code) DO UPDATE SET company_name = $3, fields = $4, extracted_at = $5`,
		date, securitiesCode, profile.CompanyName(), fields, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save profile %s", securitiesCode)
}

func (s *PostgresStore) ListProfiles(ctx context.Context, date string) ([]xbrl.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fields FROM profiles WHERE date = $1 ORDER BY securities_code`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []xbrl.Profile
	for rows.Next() {
		var fields []byte
		if err := rows.Scan(&fields); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		var p xbrl.Profile
		if err := json.Unmarshal(fields, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}
