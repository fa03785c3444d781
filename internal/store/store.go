// =============================================================================
// Finance Sheet Normalizer - Record Store
// =============================================================================
//
// The store is the insert-or-update collaborator the ingest run hands
// canonical records to. It is generic: a record is stored under its table
// name and natural key, with its flattened fields as a JSON payload, so the
// four source tables and the CC summaries share one code path.
//
// IMPLEMENTATIONS:
//   - SQLite: durable storage (modernc.org/sqlite, no cgo)
//   - Memory: for dry runs and tests
//
// TRANSACTIONS:
//   InBatch runs a function inside one transaction and rolls everything back
//   if it returns an error. Upsert works with or without an enclosing batch.
//
// =============================================================================

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// Outcome is what an Upsert did.
type Outcome int

const (
	// Inserted means the key was new.
	Inserted Outcome = iota + 1

	// Updated means the key existed and its payload was replaced.
	Updated

	// Unchanged means the key existed with an identical payload.
	Unchanged

	// Skipped means the key existed and overwriting was not allowed.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("store is closed")

// Store persists canonical records.
type Store interface {
	// Upsert inserts rec or, when overwrite is set, replaces the stored
	// payload under the same table and natural key.
	Upsert(ctx context.Context, rec types.Record, overwrite bool) (Outcome, error)

	// InBatch runs fn in one transaction. The context passed to fn carries
	// the transaction; Upserts made with it commit or roll back together.
	InBatch(ctx context.Context, fn func(ctx context.Context) error) error

	// List returns the stored records of a table ordered by natural key.
	List(ctx context.Context, table string) ([]StoredRecord, error)

	// RecordRun stores the statistics of one ingest run.
	RecordRun(ctx context.Context, run RunRecord) error

	Close() error
}

// StoredRecord is one row read back from a store.
type StoredRecord struct {
	Table      string
	NaturalKey string
	Payload    map[string]any
	RunID      string
	SourceFile string
	UpdatedAt  time.Time
}

// RunRecord is the audit line of one processed document.
type RunRecord struct {
	RunID      string
	SourceFile string
	StartedAt  time.Time
	Inserted   int
	Updated    int
	Skipped    int
	Errored    int
}

// =============================================================================
// RUN METADATA
// =============================================================================

type runKey struct{}

// Run identifies the ingest run records are written by.
type Run struct {
	ID         string
	SourceFile string
}

// WithRun attaches run metadata to ctx; Upserts record it with each row.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

func runFrom(ctx context.Context) Run {
	run, _ := ctx.Value(runKey{}).(Run)
	return run
}

// =============================================================================
// PAYLOAD ENCODING
// =============================================================================

// encodePayload flattens a record's fields into JSON. Keys are emitted in
// sorted order, so equal records encode to equal bytes.
func encodePayload(rec types.Record) ([]byte, error) {
	fields := rec.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %q: %w", rec.Table(), rec.NaturalKey(), err)
	}
	return b, nil
}

func decodePayload(b []byte) (map[string]any, error) {
	m := make(map[string]any)
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return m, nil
}
