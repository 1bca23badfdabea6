package warehouse

import "strings"

// Rowset is one fully materialized query result: column names in canonical
// form plus positional row values. It is the unit every pipeline stage
// passes around.
type Rowset struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *Rowset) Len() int {
	return len(r.Rows)
}

// ColumnIndex returns the position of name in Columns.
func (r *Rowset) ColumnIndex(name string) (int, bool) {
	for i, c := range r.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// NormalizeColumn converts a warehouse column name to canonical form:
// trimmed, lowercased, spaces replaced with underscores.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumns normalizes every name in place and returns the slice.
func NormalizeColumns(names []string) []string {
	for i, n := range names {
		names[i] = NormalizeColumn(n)
	}
	return names
}
