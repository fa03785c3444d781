package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowErrorIs(t *testing.T) {
	err := NewDuplicate("Juli 2025", 12, "booking_id", "1265543332")
	wrapped := fmt.Errorf("failed to store row: %w", err)

	assert.True(t, errors.Is(wrapped, ErrDuplicateIdentifier))
	assert.False(t, errors.Is(wrapped, ErrRowRejected))

	var rowErr *RowError
	assert.True(t, errors.As(wrapped, &rowErr))
	assert.Equal(t, 12, rowErr.Row)
}

func TestRowErrorMessage(t *testing.T) {
	err := NewUnparseable("Sheet1", 7, "trip_begins_on", "32/13/2024", true)
	assert.Equal(t,
		"[ERROR] FieldUnparseable sheet 'Sheet1' row 7 field 'trip_begins_on': required value could not be parsed (value: '32/13/2024')",
		err.Error())

	structural := NewStructural("Sheet9", "Trip Number")
	assert.Equal(t, "[ERROR] StructuralNotFound sheet 'Sheet9': required marker not found (value: 'Trip Number')", structural.Error())
}

func TestReport(t *testing.T) {
	var r Report
	r.Add(
		NewUnparseable("S", 3, "paid_on", "x", false),
		NewUnparseable("S", 4, "start_date", "x", true),
		nil,
		NewDuplicate("S", 5, "booking_id", "1"),
	)
	r.Skip()
	r.Skip()

	assert.Len(t, r.Errors, 3)
	assert.Len(t, r.Fatal(), 2)
	assert.Len(t, r.Warnings(), 1)
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, map[Kind]int{FieldUnparseable: 2, DuplicateIdentifier: 1}, r.CountByKind())

	var total Report
	total.Merge(r)
	total.Merge(r)
	assert.Len(t, total.Errors, 6)
	assert.Equal(t, 4, total.Skipped)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "RowRejected", RowRejected.String())
	assert.Equal(t, "Unknown", Kind(0).String())
}
