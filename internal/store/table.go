package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate brings the history schema up to date, tracked by PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v < 1 {
		if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  triggered_by TEXT NOT NULL,
  outcome TEXT NOT NULL,
  added INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);
`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_runs_started_at
ON runs(started_at);
`); err != nil {
			return err
		}
	}

	// v2 adds the reconcile mode and the count of rows missing from the source.
	if v < 2 {
		if !columnExists(ctx, tx, "runs", "vanished") {
			if _, err := tx.ExecContext(ctx, `ALTER TABLE runs ADD COLUMN vanished INTEGER NOT NULL DEFAULT 0;`); err != nil {
				return err
			}
		}
		if !columnExists(ctx, tx, "runs", "mode") {
			if _, err := tx.ExecContext(ctx, `ALTER TABLE runs ADD COLUMN mode TEXT NOT NULL DEFAULT '';`); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 2;`); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func columnExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	return q.QueryRowContext(ctx, query, col).Scan(&one) == nil
}
