package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/a11ygate/a11ygate/internal/model"
)

// HistoryDB provides SQLite-based storage for published run summaries.
//
// Design decision: We use a single database file for all sites rather
// than one per site. This keeps cross-site queries and backup trivial,
// and run tokens are globally unique anyway.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "a11ygate.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to forbid creation, mode=rwc to
	// allow it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // Open error dominates
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // Open error dominates
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per published sitewide summary
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_token TEXT NOT NULL UNIQUE,
		site TEXT NOT NULL,
		mode TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		page_count INTEGER NOT NULL,
		project_count INTEGER NOT NULL,
		gating INTEGER NOT NULL,
		advisory INTEGER NOT NULL,
		best_practice INTEGER NOT NULL,
		failed_pages INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);

	-- Per-rule rollups for run comparison
	CREATE TABLE IF NOT EXISTS rule_rollups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_token TEXT NOT NULL,
		rule_id TEXT NOT NULL,
		impact TEXT,
		help_url TEXT,
		nodes INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		projects TEXT,
		UNIQUE(run_token, rule_id)
	);

	CREATE INDEX IF NOT EXISTS idx_rollups_token ON rule_rollups(run_token);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored run summary row.
type RunRecord struct {
	ID           int64
	RunToken     string
	Site         string
	Mode         string
	GeneratedAt  time.Time
	PageCount    int
	ProjectCount int
	Gating       int
	Advisory     int
	BestPractice int
	FailedPages  int
}

// SaveSummary records a published summary and its rule rollups.
// Saving the same run token again replaces the previous rows, so a rerun
// of the persistence step is idempotent.
func (hdb *HistoryDB) SaveSummary(ctx context.Context, summary *model.SiteSummary) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	runQuery := `
	INSERT INTO runs (run_token, site, mode, generated_at, page_count, project_count, gating, advisory, best_practice, failed_pages)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_token) DO UPDATE SET
		site = excluded.site,
		mode = excluded.mode,
		generated_at = excluded.generated_at,
		page_count = excluded.page_count,
		project_count = excluded.project_count,
		gating = excluded.gating,
		advisory = excluded.advisory,
		best_practice = excluded.best_practice,
		failed_pages = excluded.failed_pages
	`

	if _, err := tx.ExecContext(ctx, runQuery,
		summary.RunToken,
		summary.Site,
		summary.Mode,
		summary.GeneratedAt.UTC().Format(time.RFC3339),
		summary.PageCount,
		len(summary.Projects),
		summary.GatingCount,
		summary.AdvisoryCount,
		summary.BestPracticeCount,
		summary.FailedPages,
	); err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM rule_rollups WHERE run_token = ?", summary.RunToken); err != nil {
		return fmt.Errorf("failed to clear rule rollups: %w", err)
	}

	rollupQuery := `
	INSERT INTO rule_rollups (run_token, rule_id, impact, help_url, nodes, pages, projects)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, rule := range summary.Rules {
		if _, err := tx.ExecContext(ctx, rollupQuery,
			summary.RunToken,
			rule.RuleID,
			rule.Impact,
			rule.HelpURL,
			rule.Nodes,
			rule.Pages,
			strings.Join(rule.Projects, ","),
		); err != nil {
			return fmt.Errorf("failed to insert rule rollup: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns stored runs for a site, newest first. A limit of zero
// returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, site string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, run_token, site, mode, generated_at, page_count, project_count, gating, advisory, best_practice, failed_pages
	FROM runs
	WHERE site = ?
	ORDER BY generated_at DESC, id DESC
	`
	args := []any{site}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read error dominates

	var records []RunRecord
	for rows.Next() {
		record, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// ListSites returns all distinct site names present in the history.
func (hdb *HistoryDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, "SELECT DISTINCT site FROM runs ORDER BY site")
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read error dominates

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// GetRun retrieves one run by token. Returns nil if not found.
func (hdb *HistoryDB) GetRun(ctx context.Context, runToken string) (*RunRecord, error) {
	query := `
	SELECT id, run_token, site, mode, generated_at, page_count, project_count, gating, advisory, best_practice, failed_pages
	FROM runs
	WHERE run_token = ?
	`

	row := hdb.db.QueryRowContext(ctx, query, runToken)
	record, err := scanRunRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRollups retrieves the rule rollups stored for a run.
func (hdb *HistoryDB) GetRollups(ctx context.Context, runToken string) ([]model.RuleRollup, error) {
	query := `
	SELECT rule_id, impact, help_url, nodes, pages, projects
	FROM rule_rollups
	WHERE run_token = ?
	ORDER BY nodes DESC, rule_id
	`

	rows, err := hdb.db.QueryContext(ctx, query, runToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule rollups: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read error dominates

	var rollups []model.RuleRollup
	for rows.Next() {
		var (
			rollup   model.RuleRollup
			projects string
		)
		if err := rows.Scan(&rollup.RuleID, &rollup.Impact, &rollup.HelpURL, &rollup.Nodes, &rollup.Pages, &projects); err != nil {
			return nil, fmt.Errorf("failed to scan rule rollup: %w", err)
		}
		if projects != "" {
			rollup.Projects = strings.Split(projects, ",")
		} else {
			rollup.Projects = []string{}
		}
		rollups = append(rollups, rollup)
	}

	return rollups, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRunRecord scans one runs row.
func scanRunRecord(row rowScanner) (RunRecord, error) {
	var (
		record    RunRecord
		generated string
	)
	err := row.Scan(
		&record.ID,
		&record.RunToken,
		&record.Site,
		&record.Mode,
		&generated,
		&record.PageCount,
		&record.ProjectCount,
		&record.Gating,
		&record.Advisory,
		&record.BestPractice,
		&record.FailedPages,
	)
	if err != nil {
		return RunRecord{}, err
	}

	record.GeneratedAt = parseTimestamp(generated)
	return record, nil
}

// parseTimestamp parses SQLite timestamps, which vary in format depending
// on how the value was written.
func parseTimestamp(value string) time.Time {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
