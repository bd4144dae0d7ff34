package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/nemusake/tdnet-downloader/internal/tdnet"
	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS crawl_runs (
	id           TEXT PRIMARY KEY,
	date         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	pages        INTEGER NOT NULL DEFAULT 0,
	total        INTEGER NOT NULL DEFAULT 0,
	unique_count INTEGER NOT NULL DEFAULT 0,
	dup_count    INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME
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
	fields          TEXT NOT NULL,
	extracted_at    DATETIME NOT NULL,
	PRIMARY KEY (date, securities_code)
);

CREATE INDEX IF NOT EXISTS idx_crawl_runs_date ON crawl_runs(date);
CREATE INDEX IF NOT EXISTS idx_disclosures_code ON disclosures(code);
CREATE INDEX IF NOT EXISTS idx_profiles_date ON profiles(date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, date string) (*CrawlRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crawl_runs (id, date, status, started_at) VALUES (?, ?, ?, ?)`,
		id, date, string(RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &CrawlRun{
		ID:        id,
		Date:      date,
		Status:    RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, counts RunCounts) error {
	status := RunStatusComplete
	if counts.Partial {
		status = RunStatusPartial
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE crawl_runs SET status = ?, pages = ?, total = ?, unique_count = ?, dup_count = ?, finished_at = ? WHERE id = ?`,
		string(status), counts.Pages, counts.Total, counts.Unique, counts.Duplicates, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errText string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE crawl_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(RunStatusFailed), errText, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]CrawlRun, error) {
	query := `SELECT id, date, status, pages, total, unique_count, dup_count, error, started_at, finished_at FROM crawl_runs WHERE 1=1`
	var args []any

	if filter.Date != "" {
		query += ` AND date = ?`
		args = append(args, filter.Date)
	}
	query += ` ORDER BY started_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []CrawlRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveDisclosures(ctx context.Context, date string, items []tdnet.Disclosure) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var saved int64
	for _, d := range items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO disclosures (date, identity_key, disclosed_at, code, name, title, pdf_url, xbrl_url, market, history)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (date, identity_key) DO UPDATE SET
			   disclosed_at = excluded.disclosed_at, code = excluded.code, name = excluded.name,
			   title = excluded.title, pdf_url = excluded.pdf_url, xbrl_url = excluded.xbrl_url,
			   market = excluded.market, history = excluded.history`,
			date, d.IdentityKey(), d.Time, d.Code, d.Name, d.Title, d.PDFURL, d.XBRLURL, d.Place, d.History,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert disclosure %s", d.IdentityKey())
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		saved += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit disclosures")
	}
	return saved, nil
}

func (s *SQLiteStore) ListDisclosures(ctx context.Context, date string) ([]tdnet.Disclosure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, disclosed_at, code, name, title, pdf_url, xbrl_url, market, history
		 FROM disclosures WHERE date = ? ORDER BY disclosed_at, identity_key`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list disclosures")
	}
	defer rows.Close()

	var items []tdnet.Disclosure
	for rows.Next() {
		var d tdnet.Disclosure
		if err := rows.Scan(&d.Date, &d.Time, &d.Code, &d.Name, &d.Title, &d.PDFURL, &d.XBRLURL, &d.Place, &d.History); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan disclosure")
		}
		items = append(items, d)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list disclosures iterate")
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, date, securitiesCode string, profile xbrl.Profile) error {
	fields, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (date, securities_code, company_name, fields, extracted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (date, securities_code) DO UPDATE SET
		   company_name = excluded.company_name, fields = excluded.fields, extracted_at = excluded.extracted_at`,
		date, securitiesCode, profile.CompanyName(), string(fields), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save profile %s", securitiesCode)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, date string) ([]xbrl.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fields FROM profiles WHERE date = ? ORDER BY securities_code`,
		date,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []xbrl.Profile
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		var p xbrl.Profile
		if err := json.Unmarshal([]byte(fields), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*CrawlRun, error) {
	var r CrawlRun
	var status string
	var errText sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&r.ID, &r.Date, &status, &r.Pages, &r.Total, &r.Unique, &r.Duplicates, &errText, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Status = RunStatus(status)
	if errText.Valid {
		r.Error = errText.String
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
