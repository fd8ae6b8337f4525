package store

import (
	"context"
	"fmt"
	"time"
)

// Outcomes recorded for a pass.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded reconciliation pass.
type Run struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Trigger    string    `json:"trigger"`
	Mode       string    `json:"mode"`
	Outcome    string    `json:"outcome"`
	Added      int       `json:"added"`
	Vanished   int       `json:"vanished"`
	Total      int       `json:"total"`
	Error      string    `json:"error,omitempty"`
}

// History persists pass results in the runs table.
type History struct {
	db *DB
}

func NewHistory(db *DB) *History { return &History{db: db} }

// OpenHistory opens the history database at path. An empty path disables
// history and returns a nil *History.
func OpenHistory(ctx context.Context, path string) (*History, error) {
	if path == "" {
		return nil, nil
	}
	db, err := Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return NewHistory(db), nil
}

// Close releases the underlying database. Safe on a nil History.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) Insert(ctx context.Context, r Run) (int64, error) {
	res, err := h.db.Pool.ExecContext(ctx, `
INSERT INTO runs (started_at, finished_at, triggered_by, mode, outcome, added, vanished, total, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.StartedAt.UTC().Format(timeLayout),
		r.FinishedAt.UTC().Format(timeLayout),
		r.Trigger, r.Mode, r.Outcome, r.Added, r.Vanished, r.Total, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first.
func (h *History) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	rows, err := h.db.Pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, triggered_by, mode, outcome, added, vanished, total, error
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(
			&r.ID,
			&started,
			&finished,
			&r.Trigger,
			&r.Mode,
			&r.Outcome,
			&r.Added,
			&r.Vanished,
			&r.Total,
			&r.Error,
		); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Cleanup deletes runs that started before the retention window.
func (h *History) Cleanup(ctx context.Context, keep time.Duration) (deleted int64, err error) {
	cutoff := time.Now().Add(-keep).UTC().Format(timeLayout)
	res, err := h.db.Pool.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
