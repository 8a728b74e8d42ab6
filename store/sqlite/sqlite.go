/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Keeps the saved calculator session and uploaded rosters across server
  restarts on a single machine.

INTERFACES IMPLEMENTED:
  session.BlobStore:  Opaque session blobs by key
  roster.Repository:  Uploaded rosters and their records

KEY TABLES:
  blobs:           key -> encoded session
  rosters:         one row per upload
  roster_records:  one row per rep, ordered by position, cascade-deleted
                   with their roster

NULLABLE COLUMNS:
  churn_arr and every calculated column are NULL until known, mirroring the
  optional fields on roster.Record.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to a
  single connection, since every new connection to ":memory:" would open an
  empty database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/compcalc.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  sessions := session.NewManager(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - store/postgres: Same schema on PostgreSQL
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rosters (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		calculated INTEGER NOT NULL DEFAULT 0,
		uploaded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS roster_records (
		roster_id TEXT NOT NULL REFERENCES rosters(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		book_start_arr REAL NOT NULL,
		min_retention_target REAL NOT NULL,
		max_retention_target REAL NOT NULL,
		churn_arr REAL,
		max_quarterly_churn_allowed REAL,
		quarterly_churn_target REAL,
		retention_rate REAL,
		attainment REAL,
		warnings_json TEXT,
		PRIMARY KEY (roster_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BLOB STORE (session.BlobStore interface)
// =============================================================================

// GetBlob returns the stored bytes for key.
func (s *Store) GetBlob(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// PutBlob inserts or replaces the blob for key.
func (s *Store) PutBlob(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO blobs (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// DeleteBlob removes the blob for key, if any.
func (s *Store) DeleteBlob(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key)
	return err
}

// =============================================================================
// ROSTER REPOSITORY (roster.Repository interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveRoster inserts or replaces a roster and all of its records atomically.
func (s *Store) SaveRoster(ctx context.Context, r roster.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO rosters (id, file_name, calculated, uploaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			calculated = excluded.calculated,
			uploaded_at = excluded.uploaded_at
	`
	if _, err := sqlTx.ExecContext(ctx, query,
		r.ID, r.FileName, r.Calculated, r.UploadedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM roster_records WHERE roster_id = ?", r.ID); err != nil {
		return fmt.Errorf("failed to replace roster records: %w", err)
	}
	for i, rec := range r.Records {
		if err := insertRecord(ctx, sqlTx, r.ID, i, rec); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func insertRecord(ctx context.Context, db execer, rosterID string, position int, rec roster.Record) error {
	var warningsJSON sql.NullString
	if len(rec.Warnings) > 0 {
		data, err := json.Marshal(rec.Warnings)
		if err != nil {
			return fmt.Errorf("failed to encode warnings: %w", err)
		}
		warningsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO roster_records
		(roster_id, position, id, name, book_start_arr, min_retention_target, max_retention_target,
		 churn_arr, max_quarterly_churn_allowed, quarterly_churn_target, retention_rate, attainment,
		 warnings_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		rosterID,
		position,
		rec.ID,
		rec.Name,
		rec.BookStartARR,
		rec.MinRetentionTarget,
		rec.MaxRetentionTarget,
		nullFloat(rec.ChurnARR),
		nullFloat(rec.MaxQuarterlyChurnAllowed),
		nullFloat(rec.QuarterlyChurnTarget),
		nullFloat(rec.RetentionRate),
		nullFloat(rec.Attainment),
		warningsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save roster record %d: %w", position, err)
	}
	return nil
}

// GetRoster loads a roster with its records in upload order.
func (s *Store) GetRoster(ctx context.Context, id string) (roster.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r roster.Roster
	var uploadedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, file_name, calculated, uploaded_at FROM rosters WHERE id = ?",
		id,
	).Scan(&r.ID, &r.FileName, &r.Calculated, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Roster{}, roster.ErrRosterNotFound
	}
	if err != nil {
		return roster.Roster{}, fmt.Errorf("failed to load roster: %w", err)
	}
	r.UploadedAt, _ = time.Parse(time.RFC3339Nano, uploadedAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, book_start_arr, min_retention_target, max_retention_target,
		       churn_arr, max_quarterly_churn_allowed, quarterly_churn_target, retention_rate, attainment,
		       warnings_json
		FROM roster_records WHERE roster_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("failed to load roster records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return roster.Roster{}, err
		}
		r.Records = append(r.Records, rec)
	}
	return r, rows.Err()
}

func scanRecord(rows *sql.Rows) (roster.Record, error) {
	var rec roster.Record
	var churn, maxAllowed, target, retention, attainment sql.NullFloat64
	var warningsJSON sql.NullString
	err := rows.Scan(
		&rec.ID, &rec.Name, &rec.BookStartARR, &rec.MinRetentionTarget, &rec.MaxRetentionTarget,
		&churn, &maxAllowed, &target, &retention, &attainment,
		&warningsJSON,
	)
	if err != nil {
		return roster.Record{}, fmt.Errorf("failed to scan roster record: %w", err)
	}

	rec.ChurnARR = floatPtr(churn)
	rec.MaxQuarterlyChurnAllowed = floatPtr(maxAllowed)
	rec.QuarterlyChurnTarget = floatPtr(target)
	rec.RetentionRate = floatPtr(retention)
	rec.Attainment = floatPtr(attainment)

	if warningsJSON.Valid {
		if err := json.Unmarshal([]byte(warningsJSON.String), &rec.Warnings); err != nil {
			return roster.Record{}, fmt.Errorf("failed to decode warnings: %w", err)
		}
	}
	return rec, nil
}

// DeleteRoster removes a roster; its records go with it.
func (s *Store) DeleteRoster(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM rosters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete roster: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrRosterNotFound
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"roster_records", "rosters", "blobs"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
