package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store provides SQLite-based storage for render history.
// It manages connection pooling and provides methods for recording,
// listing, and pruning past renders.
//
// Design decision: We keep a single database file shared by every
// document rather than one file per document. This keeps the history
// listing a single query and makes backup/restore a file copy.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a history Store in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "chartbook.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// Configure connection pool
	// SQLite only supports one writer, and render history sees very
	// little concurrency, so a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path to the SQLite database file.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Render records store one row per completed render
	CREATE TABLE IF NOT EXISTS renders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_path TEXT NOT NULL,
		title TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		visuals INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		format TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_renders_document ON renders(document_path);
	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Record represents a stored render.
type Record struct {
	// ID is the unique identifier of the render in the database.
	ID int64

	// DocumentPath is the path of the rendered document.
	DocumentPath string

	// Title is the report title at render time.
	Title string

	// Pages is the number of pages in the render model.
	Pages int

	// Visuals is the number of visuals across all pages.
	Visuals int

	// Warnings is the number of diagnostics collected during the render.
	Warnings int

	// Duration is how long the render took.
	Duration time.Duration

	// Format is the output format that was written (html, markdown, json).
	Format string

	// CreatedAt is when the render was recorded.
	CreatedAt time.Time
}

// Insert records a completed render and returns its database ID.
func (s *Store) Insert(ctx context.Context, rec *Record) (int64, error) {
	query := `
	INSERT INTO renders (document_path, title, pages, visuals, warnings, duration_ns, format)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.DocumentPath,
		rec.Title,
		rec.Pages,
		rec.Visuals,
		rec.Warnings,
		rec.Duration.Nanoseconds(),
		rec.Format,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert render record: %w", err)
	}

	return result.LastInsertId()
}

// List returns the most recent renders, newest first.
// A limit of zero or less returns all records.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
	SELECT id, document_path, title, pages, visuals, warnings, duration_ns, format, created_at
	FROM renders
	ORDER BY created_at DESC, id DESC
	`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list renders: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByDocument returns the most recent renders of a single document,
// newest first. A limit of zero or less returns all matching records.
func (s *Store) ListByDocument(ctx context.Context, documentPath string, limit int) ([]Record, error) {
	query := `
	SELECT id, document_path, title, pages, visuals, warnings, duration_ns, format, created_at
	FROM renders
	WHERE document_path = ?
	ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{documentPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list renders: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of recorded renders.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM renders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count renders: %w", err)
	}
	return count, nil
}

// Prune deletes all but the most recent keep records and returns the
// number of deleted rows. A keep of zero or less deletes every record.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		result, err := s.db.ExecContext(ctx, "DELETE FROM renders")
		if err != nil {
			return 0, fmt.Errorf("failed to prune renders: %w", err)
		}
		return result.RowsAffected()
	}

	query := `
	DELETE FROM renders
	WHERE id NOT IN (
		SELECT id FROM renders
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	)
	`

	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune renders: %w", err)
	}

	return result.RowsAffected()
}

// scanRecords reads all rows into Record values.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	var results []Record
	for rows.Next() {
		var rec Record
		var durationNS int64
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.DocumentPath,
			&rec.Title,
			&rec.Pages,
			&rec.Visuals,
			&rec.Warnings,
			&durationNS,
			&rec.Format,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan render record: %w", err)
		}

		rec.Duration = time.Duration(durationNS)
		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
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
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
