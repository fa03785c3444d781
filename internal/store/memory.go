package store

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

type memoryEntry struct {
	payload    []byte
	runID      string
	sourceFile string
	updatedAt  time.Time
}

// Memory is an in-process Store. Batches are emulated by snapshotting the
// tables and restoring them when the batch function fails.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]memoryEntry
	runs   []RunRecord
	closed bool
}

type memoryBatchKey struct{}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]memoryEntry)}
}

// Upsert implements Store.
func (m *Memory) Upsert(ctx context.Context, rec types.Record, overwrite bool) (Outcome, error) {
	payload, err := encodePayload(rec)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	table := m.tables[rec.Table()]
	if table == nil {
		table = make(map[string]memoryEntry)
		m.tables[rec.Table()] = table
	}

	run := runFrom(ctx)
	entry := memoryEntry{payload: payload, runID: run.ID, sourceFile: run.SourceFile, updatedAt: time.Now().UTC()}

	existing, ok := table[rec.NaturalKey()]
	switch {
	case !ok:
		table[rec.NaturalKey()] = entry
		return Inserted, nil
	case bytes.Equal(existing.payload, payload):
		return Unchanged, nil
	case !overwrite:
		return Skipped, nil
	default:
		table[rec.NaturalKey()] = entry
		return Updated, nil
	}
}

// InBatch implements Store.
func (m *Memory) InBatch(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryBatchKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	snapshot := m.snapshot()
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, memoryBatchKey{}, true)); err != nil {
		m.mu.Lock()
		m.tables = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) snapshot() map[string]map[string]memoryEntry {
	out := make(map[string]map[string]memoryEntry, len(m.tables))
	for name, table := range m.tables {
		copied := make(map[string]memoryEntry, len(table))
		for k, v := range table {
			copied[k] = v
		}
		out[name] = copied
	}
	return out
}

// List implements Store.
func (m *Memory) List(_ context.Context, table string) ([]StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	keys := make([]string, 0, len(m.tables[table]))
	for k := range m.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]StoredRecord, 0, len(keys))
	for _, k := range keys {
		e := m.tables[table][k]
		payload, err := decodePayload(e.payload)
		if err != nil {
			return nil, err
		}
		out = append(out, StoredRecord{
			Table:      table,
			NaturalKey: k,
			Payload:    payload,
			RunID:      e.runID,
			SourceFile: e.sourceFile,
			UpdatedAt:  e.updatedAt,
		})
	}
	return out, nil
}

// RecordRun implements Store.
func (m *Memory) RecordRun(_ context.Context, run RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.runs = append(m.runs, run)
	return nil
}

// Runs returns the recorded runs.
func (m *Memory) Runs() []RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunRecord(nil), m.runs...)
}

// Count returns the number of records in a table.
func (m *Memory) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
