package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

func installment(amount int64) types.InstallmentRecord {
	paid := time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC)
	return types.InstallmentRecord{
		EmployeeID:  "8912345Z",
		MonthName:   "Januari",
		Month:       time.January,
		Year:        2024,
		Amount:      amount,
		PaidOn:      &paid,
		Status:      types.StatusPaid,
		SourceSheet: "34 UID SULSELRABAR_2024",
	}
}

// stores runs each test against both implementations.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "normalizer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestUpsertOutcomes(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := WithRun(context.Background(), Run{ID: "run-1", SourceFile: "bfko.xlsx"})

			out, err := s.Upsert(ctx, installment(1500000), true)
			require.NoError(t, err)
			assert.Equal(t, Inserted, out)

			out, err = s.Upsert(ctx, installment(1500000), true)
			require.NoError(t, err)
			assert.Equal(t, Unchanged, out)

			out, err = s.Upsert(ctx, installment(1750000), false)
			require.NoError(t, err)
			assert.Equal(t, Skipped, out)

			out, err = s.Upsert(ctx, installment(1750000), true)
			require.NoError(t, err)
			assert.Equal(t, Updated, out)

			rows, err := s.List(ctx, types.TableInstallments)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "8912345Z|2024|1", rows[0].NaturalKey)
			assert.Equal(t, "run-1", rows[0].RunID)
			assert.Equal(t, "bfko.xlsx", rows[0].SourceFile)
			assert.Equal(t, float64(1750000), rows[0].Payload["amount"])
			assert.Equal(t, "2024-01-29", rows[0].Payload["paid_on_date"])
		})
	}
}

func TestInBatchRollsBack(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("boom")

			err := s.InBatch(ctx, func(ctx context.Context) error {
				if _, err := s.Upsert(ctx, installment(1), true); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			rows, err := s.List(ctx, types.TableInstallments)
			require.NoError(t, err)
			assert.Empty(t, rows)

			err = s.InBatch(ctx, func(ctx context.Context) error {
				_, err := s.Upsert(ctx, installment(1), true)
				return err
			})
			require.NoError(t, err)

			rows, err = s.List(ctx, types.TableInstallments)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})
	}
}

func TestRecordRunAndClose(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.RecordRun(ctx, RunRecord{RunID: "r", SourceFile: "f", StartedAt: time.Now(), Inserted: 3}))
			require.NoError(t, s.Close())

			_, err := s.Upsert(ctx, installment(1), true)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestMemoryRuns(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.RecordRun(context.Background(), RunRecord{RunID: "a"}))
	assert.Equal(t, "a", m.Runs()[0].RunID)
	assert.Zero(t, m.Count(types.TableCC))
}

func TestOpenSQLiteInMemory(t *testing.T) {
	s, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	out, err := s.Upsert(context.Background(), types.SheetSummary{SourceSheet: "Juli 2025", GrossPaymentTotal: 5}, true)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
