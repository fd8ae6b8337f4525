package reconcile

import (
	"fmt"
	"strings"

	"layoffs-engine/internal/domain"
)

// Mode selects how a fresh scrape is merged into the persisted table.
type Mode string

const (
	// ModeAppendNew appends fetched rows not already persisted. Rows that
	// disappeared from the source are counted but left alone.
	ModeAppendNew Mode = "append_new"

	// ModeSymmetric appends every row that occurs exactly once across the
	// persisted and fetched tables. Rows that left the source are appended
	// again as duplicates; kept for parity with older datasets.
	ModeSymmetric Mode = "symmetric"
)

// ParseMode maps a config value to a Mode. Empty means ModeAppendNew.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAppendNew:
		return ModeAppendNew, nil
	case ModeSymmetric:
		return ModeSymmetric, nil
	default:
		return "", fmt.Errorf("unknown reconcile mode %q (want %q or %q)", s, ModeAppendNew, ModeSymmetric)
	}
}

// NewRows returns the fetched rows whose key is absent from existing, in
// first-seen order and without repeats.
func NewRows(existing, fetched []domain.Record) []domain.Record {
	seen := make(map[string]struct{}, len(existing)+len(fetched))
	for _, r := range existing {
		seen[r.Key()] = struct{}{}
	}

	var out []domain.Record
	for _, r := range fetched {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SymmetricDifference returns the rows of existing followed by fetched whose
// key occurs exactly once in that concatenation. A key repeated anywhere,
// even within one side, is dropped entirely.
func SymmetricDifference(existing, fetched []domain.Record) []domain.Record {
	counts := make(map[string]int, len(existing)+len(fetched))
	for _, r := range existing {
		counts[r.Key()]++
	}
	for _, r := range fetched {
		counts[r.Key()]++
	}

	var out []domain.Record
	for _, side := range [][]domain.Record{existing, fetched} {
		for _, r := range side {
			if counts[r.Key()] == 1 {
				out = append(out, r)
			}
		}
	}
	return out
}

// Vanished counts distinct persisted rows that the source no longer lists.
func Vanished(existing, fetched []domain.Record) int {
	current := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		current[r.Key()] = struct{}{}
	}

	gone := make(map[string]struct{})
	for _, r := range existing {
		k := r.Key()
		if _, ok := current[k]; !ok {
			gone[k] = struct{}{}
		}
	}
	return len(gone)
}

// Align projects both tables onto the union of their columns, existing
// order first, so rows compare by column name rather than position.
func Align(existing, fetched domain.Table) (domain.Table, domain.Table) {
	cols := domain.UnionColumns(existing.Columns, fetched.Columns)
	return existing.Project(cols), fetched.Project(cols)
}

// Diff returns the rows mode would append to existing.
func Diff(mode Mode, existing, fetched []domain.Record) []domain.Record {
	if mode == ModeSymmetric {
		return SymmetricDifference(existing, fetched)
	}
	return NewRows(existing, fetched)
}
