// Package sqlite implements the durable store on a transactional SQLite
// database using the pure-Go ncruces driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/logging"
	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary
)

const dbDirPerm = 0o750

// schema is created on first open. There is deliberately no migration
// machinery beyond this: the store either opens with the current schema or
// the caller falls back to the simple store.
const schema = `
CREATE TABLE IF NOT EXISTS skin_records (
	id          TEXT PRIMARY KEY,
	origin_url  TEXT NOT NULL DEFAULT '',
	raw_vars    BLOB NOT NULL,
	installed   INTEGER NOT NULL DEFAULT 0,
	inserted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS engine_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a repository.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dbPath and
// ensures the schema exists. Any failure here is grounds for the caller's
// one-time fallback to the simple store.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	log := logging.FromContext(ctx)

	if dbPath == "" {
		return nil, errors.New("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pool configuration must precede any queries.
	configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("sqlite store opened")

	return &Store{db: db}, nil
}

// applyPragmas configures SQLite for safe concurrent access.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrent access
		"PRAGMA synchronous = NORMAL", // Safe in WAL mode
		"PRAGMA busy_timeout = 5000",  // Wait 5 seconds on lock contention
		"PRAGMA foreign_keys = ON",    // Enable referential integrity
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// configurePool limits connections for SQLite's single-writer model. The
// connection lives as long as the process, so it never expires.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
}

// Put inserts or replaces a skin record.
func (s *Store) Put(ctx context.Context, record entity.SkinRecord) error {
	if record.InsertedAt.IsZero() {
		record.InsertedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skin_records (id, origin_url, raw_vars, installed, inserted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			origin_url = excluded.origin_url,
			raw_vars = excluded.raw_vars,
			installed = excluded.installed,
			inserted_at = excluded.inserted_at`,
		record.ID, record.OriginURL, record.RawVars, record.Installed, record.InsertedAt)
	if err != nil {
		return fmt.Errorf("put skin record %q: %w", record.ID, err)
	}
	return nil
}

// Get returns the record for id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*entity.SkinRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, origin_url, raw_vars, installed, inserted_at
		FROM skin_records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get skin record %q: %w", id, err)
	}
	return record, nil
}

// List returns all persisted records ordered by insertion time.
func (s *Store) List(ctx context.Context) ([]entity.SkinRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, origin_url, raw_vars, installed, inserted_at
		FROM skin_records ORDER BY inserted_at`)
	if err != nil {
		return nil, fmt.Errorf("list skin records: %w", err)
	}
	defer rows.Close()

	var records []entity.SkinRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list skin records: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Delete removes a record. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM skin_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete skin record %q: %w", id, err)
	}
	return nil
}

// GetValue returns the state value for key, reporting presence explicitly.
func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM engine_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %q: %w", key, err)
	}
	return value, true, nil
}

// SetValue inserts or replaces a state value.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engine_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// DeleteValue removes a state key. Missing keys are not an error.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM engine_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*entity.SkinRecord, error) {
	var record entity.SkinRecord
	var installed int
	if err := row.Scan(&record.ID, &record.OriginURL, &record.RawVars, &installed, &record.InsertedAt); err != nil {
		return nil, err
	}
	record.Installed = installed != 0
	return &record, nil
}
