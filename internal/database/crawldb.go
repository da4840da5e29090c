package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/scidigest/internal/model"
)

// dbFileName is the SQLite file created under the data directory.
const dbFileName = "scidigest.db"

// CrawlDB provides SQLite-based storage for crawl history. Every processed
// task is recorded with its terminal state so that past runs can be
// inspected after the JSON output files have been overwritten.
//
// Design decision: History is append-only diagnostics. It never feeds back
// into scheduling or dedup; the in-memory visited set is rebuilt from
// scratch each run.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB under the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the location of the SQLite database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl history records one row per processed task
	CREATE TABLE IF NOT EXISTS crawl_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		source TEXT,
		outcome TEXT NOT NULL,
		relevant INTEGER NOT NULL DEFAULT 0,
		summary TEXT,
		breadcrumbs TEXT,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_url ON crawl_history(url);
	CREATE INDEX IF NOT EXISTS idx_history_outcome ON crawl_history(outcome);
	CREATE INDEX IF NOT EXISTS idx_history_crawled_at ON crawl_history(crawled_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordTask appends one crawl history row.
func (cdb *CrawlDB) RecordTask(ctx context.Context, record model.TaskRecord) error {
	breadcrumbsJSON, err := json.Marshal(record.Breadcrumbs)
	if err != nil {
		return fmt.Errorf("failed to serialize breadcrumbs: %w", err)
	}

	crawledAt := record.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now()
	}

	query := `
	INSERT INTO crawl_history (url, depth, source, outcome, relevant, summary, breadcrumbs, crawled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		record.URL,
		record.Depth,
		string(record.Source),
		string(record.Outcome),
		record.Relevant,
		record.Summary,
		string(breadcrumbsJSON),
		crawledAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert crawl record: %w", err)
	}

	return nil
}

// Count returns the total number of crawl history rows.
func (cdb *CrawlDB) Count(ctx context.Context) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawl_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count crawl history: %w", err)
	}
	return count, nil
}

// RecentTasks returns up to limit history rows, most recent first.
func (cdb *CrawlDB) RecentTasks(ctx context.Context, limit int) ([]model.TaskRecord, error) {
	query := `
	SELECT url, depth, source, outcome, relevant, summary, breadcrumbs, crawled_at
	FROM crawl_history
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl history: %w", err)
	}
	defer rows.Close()

	var records []model.TaskRecord
	for rows.Next() {
		var record model.TaskRecord
		var source, outcome, breadcrumbsJSON, crawledAt string

		err := rows.Scan(
			&record.URL,
			&record.Depth,
			&source,
			&outcome,
			&record.Relevant,
			&record.Summary,
			&breadcrumbsJSON,
			&crawledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl record: %w", err)
		}

		record.Source = model.RenderSource(source)
		record.Outcome = model.TaskOutcome(outcome)
		record.CrawledAt = parseTimestamp(crawledAt)

		if breadcrumbsJSON != "" {
			if err := json.Unmarshal([]byte(breadcrumbsJSON), &record.Breadcrumbs); err != nil {
				return nil, fmt.Errorf("failed to parse breadcrumbs: %w", err)
			}
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
