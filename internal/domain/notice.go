package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Column names published by the source table. They are kept verbatim.
const (
	ColCompany      = "Company"
	ColState        = "State"
	ColIndustry     = "Industry"
	ColWorkers      = "Number of Workers"
	ColReceivedDate = "WARN Received Date"
)

// DashboardColumns are the columns analytics cannot work without.
var DashboardColumns = []string{ColState, ColIndustry, ColWorkers, ColReceivedDate, ColCompany}

// Record is one WARN notice: cell text in column order, as scraped.
type Record []string

// Table is a row-oriented notice table with header-derived column names.
type Table struct {
	Columns []string
	Rows    []Record

	// Ragged holds indexes of rows that had fewer cells than the header
	// and were padded. Only set by the fetcher; never persisted.
	Ragged []int
}

// Key identifies a row by the full equality of all its values. Each cell is
// length-prefixed, so no cell content can shift a boundary.
func (r Record) Key() string {
	var b strings.Builder
	for _, v := range r {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// Index returns the position of column name, or -1.
func (t Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// Value returns the cell of row i under column name, or "" if absent.
func (t Table) Value(i int, name string) string {
	c := t.Index(name)
	if c < 0 || i < 0 || i >= len(t.Rows) || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// Missing returns the names in want that the table has no column for.
func (t Table) Missing(want ...string) []string {
	var out []string
	for _, w := range want {
		if t.Index(w) < 0 {
			out = append(out, w)
		}
	}
	return out
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// columnSlot names a column by its name and how many earlier columns share
// that name, so repeated headers (often blank) stay distinct.
type columnSlot struct {
	name string
	nth  int
}

func slots(columns []string) []columnSlot {
	seen := make(map[string]int, len(columns))
	out := make([]columnSlot, len(columns))
	for i, c := range columns {
		out[i] = columnSlot{name: c, nth: seen[c]}
		seen[c]++
	}
	return out
}

// Project re-orders each row onto columns, filling cells for columns the
// table does not have with "". The Nth column named X maps to the Nth X.
func (t Table) Project(columns []string) Table {
	src := make(map[columnSlot]int, len(t.Columns))
	for i, s := range slots(t.Columns) {
		src[s] = i
	}
	idx := make([]int, len(columns))
	for i, s := range slots(columns) {
		if j, ok := src[s]; ok {
			idx[i] = j
		} else {
			idx[i] = -1
		}
	}

	out := Table{Columns: slices.Clone(columns), Rows: make([]Record, 0, len(t.Rows))}
	for _, row := range t.Rows {
		rec := make(Record, len(columns))
		for i, src := range idx {
			if src >= 0 && src < len(row) {
				rec[i] = row[src]
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	return out
}

// UnionColumns returns a's columns followed by any of b's that a lacks.
// Names are counted, so a name b repeats more often than a is appended
// for each extra occurrence.
func UnionColumns(a, b []string) []string {
	out := slices.Clone(a)
	have := make(map[string]int, len(a))
	for _, c := range a {
		have[c]++
	}
	for _, s := range slots(b) {
		if s.nth >= have[s.name] {
			out = append(out, s.name)
			have[s.name]++
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{Columns: slices.Clone(t.Columns), Ragged: slices.Clone(t.Ragged)}
	out.Rows = make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}
