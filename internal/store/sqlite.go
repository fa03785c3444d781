package store

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

//go:embed schema.sql
var schemaFS embed.FS

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLite stores records in a SQLite database file.
type SQLite struct {
	db *sql.DB
}

type txKey struct{}

// querier is what *sql.DB and *sql.Tx have in common.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies
// the schema.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	for _, stmt := range strings.Split(string(schemaSQL), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// Upsert implements Store.
func (s *SQLite) Upsert(ctx context.Context, rec types.Record, overwrite bool) (Outcome, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	payload, err := encodePayload(rec)
	if err != nil {
		return 0, err
	}

	q := s.q(ctx)
	run := runFrom(ctx)
	now := time.Now().UTC().Format(time.RFC3339)

	var existing []byte
	err = q.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE table_name = ? AND natural_key = ?`,
		rec.Table(), rec.NaturalKey(),
	).Scan(&existing)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = q.ExecContext(ctx,
			`INSERT INTO records (table_name, natural_key, payload, run_id, source_file, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Table(), rec.NaturalKey(), string(payload), run.ID, run.SourceFile, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s %q: %w", rec.Table(), rec.NaturalKey(), err)
		}
		return Inserted, nil
	case err != nil:
		return 0, fmt.Errorf("failed to look up %s %q: %w", rec.Table(), rec.NaturalKey(), err)
	}

	if bytes.Equal(existing, payload) {
		return Unchanged, nil
	}
	if !overwrite {
		return Skipped, nil
	}

	_, err = q.ExecContext(ctx,
		`UPDATE records SET payload = ?, run_id = ?, source_file = ?, updated_at = ?
		 WHERE table_name = ? AND natural_key = ?`,
		string(payload), run.ID, run.SourceFile, now, rec.Table(), rec.NaturalKey(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s %q: %w", rec.Table(), rec.NaturalKey(), err)
	}
	return Updated, nil
}

// InBatch implements Store. A nested call joins the enclosing transaction.
func (s *SQLite) InBatch(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context, table string) ([]StoredRecord, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT natural_key, payload, run_id, source_file, updated_at
		 FROM records WHERE table_name = ? ORDER BY natural_key`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			rec       = StoredRecord{Table: table}
			payload   []byte
			updatedAt string
		)
		if err := rows.Scan(&rec.NaturalKey, &payload, &rec.RunID, &rec.SourceFile, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		if rec.Payload, err = decodePayload(payload); err != nil {
			return nil, err
		}
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordRun implements Store.
func (s *SQLite) RecordRun(ctx context.Context, run RunRecord) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, source_file, started_at, inserted, updated, skipped, errored)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.SourceFile, run.StartedAt.UTC().Format(time.RFC3339),
		run.Inserted, run.Updated, run.Skipped, run.Errored,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
