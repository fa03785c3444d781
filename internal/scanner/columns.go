package scanner

import (
	"sort"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/types"
)

// ColumnMap is the resolved position of each logical column role in one
// sheet. It is a value object: build it once per header row and pass it to
// the extractor.
type ColumnMap struct {
	cols map[string]int
}

// MapColumns resolves roles against a header row. Each role lists its
// accepted header labels; the first alias found wins.
func MapColumns(header types.Row, roles map[string][]string) ColumnMap {
	cm := ColumnMap{cols: make(map[string]int, len(roles))}
	for role, aliases := range roles {
		for _, alias := range aliases {
			if idx := CellIndex(header, alias); idx >= 0 {
				cm.cols[role] = idx
				break
			}
		}
	}
	return cm
}

// NewColumnMap builds a map from explicit positions. Used for layouts that
// carry no header row.
func NewColumnMap(positions map[string]int) ColumnMap {
	cm := ColumnMap{cols: make(map[string]int, len(positions))}
	for role, idx := range positions {
		cm.cols[role] = idx
	}
	return cm
}

// Index returns the column of a role.
func (m ColumnMap) Index(role string) (int, bool) {
	idx, ok := m.cols[role]
	return idx, ok
}

// Has reports whether the role was found.
func (m ColumnMap) Has(role string) bool {
	_, ok := m.cols[role]
	return ok
}

// Cell returns the row's cell for a role; empty when the role is unmapped.
func (m ColumnMap) Cell(row types.Row, role string) types.Cell {
	idx, ok := m.cols[role]
	if !ok {
		return types.Empty
	}
	return row.At(idx)
}

// Text is Cell(...).Text().
func (m ColumnMap) Text(row types.Row, role string) string {
	return m.Cell(row, role).Text()
}

// Missing lists the required roles that were not found, sorted.
func (m ColumnMap) Missing(required ...string) []string {
	var missing []string
	for _, role := range required {
		if !m.Has(role) {
			missing = append(missing, role)
		}
	}
	sort.Strings(missing)
	return missing
}

// Len is the number of mapped roles.
func (m ColumnMap) Len() int {
	return len(m.cols)
}
