package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kiracore/tracker/internal/paths"
)

// DB represents the tracker database
type DB struct {
	*sql.DB
	path string
	now  func() time.Time
}

// DefaultDBPath returns the default database path.
// Uses XDG_DATA_HOME/tracker/tracker.db or ~/.local/share/tracker/tracker.db
func DefaultDBPath() string {
	return paths.DatabasePath()
}

// Open opens or creates the database
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultDBPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	connStr := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &DB{DB: db, path: path, now: time.Now}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Init initializes the database schema
func (db *DB) Init() error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == nil && version >= SchemaVersion {
		return nil
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec(Views); err != nil {
		return fmt.Errorf("failed to create views: %w", err)
	}

	_, err = db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// Backup copies the database to the specified path
func (db *DB) Backup(destPath string) error {
	// Flush the WAL into the main file first
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}

	src, err := os.Open(db.path)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return nil
}

// Restore replaces the database file with a backup. The DB is closed
// afterwards and must be reopened.
func (db *DB) Restore(srcPath string) error {
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(db.path)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return nil
}

// GetStats returns database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{
		Path:        db.path,
		Collections: make(map[string]int, len(collectionTables)),
		ByStatus:    make(map[string]int),
	}

	info, err := os.Stat(db.path)
	if err == nil {
		stats.Size = info.Size()
	}

	for _, table := range collectionTables {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats.Collections[table] = n
	}

	rows, err := db.Query("SELECT status, count FROM v_issue_status")
	if err != nil {
		return nil, fmt.Errorf("failed to read status view: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status sql.NullString
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[status.String] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.QueryRow("SELECT COUNT(*) FROM snapshot_history").Scan(&stats.Saves)
	db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&stats.SchemaVersion)

	var lastSaved sql.NullString
	db.QueryRow("SELECT MAX(saved_at) FROM snapshot_history").Scan(&lastSaved)
	if lastSaved.Valid && lastSaved.String != "" {
		if t, err := time.Parse(timeLayout, lastSaved.String); err == nil {
			stats.LastSaved = t
		}
	}

	return stats, nil
}

// Export writes the stored workspace as JSON
func (db *DB) Export(w io.Writer) error {
	snap, err := db.LoadSnapshot(context.Background())
	if err != nil {
		return err
	}

	data := ExportData{
		ExportedAt:    db.now().UTC(),
		SchemaVersion: SchemaVersion,
		Workspace:     snap,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Import replaces the stored workspace with an exported document
func (db *DB) Import(r io.Reader) error {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	if data.SchemaVersion > SchemaVersion {
		return fmt.Errorf("export schema version %d is newer than supported version %d", data.SchemaVersion, SchemaVersion)
	}

	return db.SaveSnapshot(context.Background(), data.Workspace)
}

// Vacuum reclaims unused space
func (db *DB) Vacuum() error {
	_, err := db.Exec("VACUUM")
	return err
}

// Analyze updates query planner statistics
func (db *DB) Analyze() error {
	_, err := db.Exec("ANALYZE")
	return err
}

// Optimize runs both VACUUM and ANALYZE
func (db *DB) Optimize() error {
	if err := db.Vacuum(); err != nil {
		return err
	}
	return db.Analyze()
}
