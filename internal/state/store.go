// Package state keeps a history of template applies in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// ApplyRecord is one recorded template apply.
type ApplyRecord struct {
	ID           int64
	TemplateRoot string
	TargetRoot   string
	AppliedAt    time.Time
}

// FileRecord is the outcome for one file of an apply.
type FileRecord struct {
	ApplyID int64
	Path    string
	Outcome string
	// ContentHash is the hex sha256 of the file as left on disk by the apply,
	// so kept files hash their existing content.
	ContentHash string
}

// Store manages the SQLite database for apply history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginApply records the start of an apply and returns its ID.
func (s *Store) BeginApply(templateRoot, targetRoot string) (int64, error) {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO applies (template_root, target_root)
		VALUES (?, ?)
	`, templateRoot, targetRoot)
	if err != nil {
		return 0, fmt.Errorf("saving apply: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading apply id: %w", err)
	}

	return id, nil
}

// RecordFile stores the outcome of a single file for the given apply.
func (s *Store) RecordFile(applyID int64, path, outcome, contentHash string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO apply_files (apply_id, path, outcome, content_hash)
		VALUES (?, ?, ?, ?)
	`, applyID, path, outcome, contentHash)
	if err != nil {
		return fmt.Errorf("saving file outcome: %w", err)
	}

	return nil
}

// GetApply returns a specific apply by ID. Returns nil if it does not exist.
func (s *Store) GetApply(id int64) (*ApplyRecord, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT id, template_root, target_root, applied_at
		FROM applies
		WHERE id = ?
	`, id)

	var r ApplyRecord
	var appliedAt string

	err := row.Scan(&r.ID, &r.TemplateRoot, &r.TargetRoot, &appliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means "not found", distinct from error
	}
	if err != nil {
		return nil, fmt.Errorf("querying apply: %w", err)
	}

	r.AppliedAt, err = parseTime(appliedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing applied_at: %w", err)
	}

	return &r, nil
}

// ListApplies returns the N most recent applies, newest first.
func (s *Store) ListApplies(limit int) ([]ApplyRecord, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, template_root, target_root, applied_at
		FROM applies
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying applies: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var records []ApplyRecord
	for rows.Next() {
		var r ApplyRecord
		var appliedAt string

		if err := rows.Scan(&r.ID, &r.TemplateRoot, &r.TargetRoot, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning apply: %w", err)
		}

		r.AppliedAt, err = parseTime(appliedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing applied_at: %w", err)
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// ListFiles returns the recorded file outcomes of an apply in recording order.
func (s *Store) ListFiles(applyID int64) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT apply_id, path, outcome, content_hash
		FROM apply_files
		WHERE apply_id = ?
		ORDER BY id
	`, applyID)
	if err != nil {
		return nil, fmt.Errorf("querying apply files: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var records []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.ApplyID, &r.Path, &r.Outcome, &r.ContentHash); err != nil {
			return nil, fmt.Errorf("scanning apply file: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// PruneHistory keeps only the N most recent applies, deleting older ones and their files.
func (s *Store) PruneHistory(keepN int) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning prune: %w", err)
	}

	const keep = `SELECT id FROM applies ORDER BY id DESC LIMIT ?`
	if _, err := tx.ExecContext(ctx, `DELETE FROM apply_files WHERE apply_id NOT IN (`+keep+`)`, keepN); err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return fmt.Errorf("pruning apply files: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applies WHERE id NOT IN (`+keep+`)`, keepN); err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return fmt.Errorf("pruning applies: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing prune: %w", err)
	}

	return nil
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	currentVersion := s.getSchemaVersion()

	migrations := []func(*sql.Tx) error{
		migrateV1,
	}

	ctx := context.Background()
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if the schema_version table doesn't exist.
func (s *Store) getSchemaVersion() int {
	ctx := context.Background()

	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applies (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			template_root   TEXT NOT NULL,
			target_root     TEXT NOT NULL,
			applied_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS apply_files (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			apply_id        INTEGER NOT NULL REFERENCES applies(id),
			path            TEXT NOT NULL,
			outcome         TEXT NOT NULL,
			content_hash    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_apply_files_apply
			ON apply_files(apply_id, id)`,
	}

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:30], err)
		}
	}

	return nil
}
