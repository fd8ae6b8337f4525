// Package reconcile merges a fresh scrape into the persisted notice table.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/scrape/types"
	"layoffs-engine/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultLockTimeout = 5 * time.Second

var tracer = otel.Tracer("layoffs-engine/internal/reconcile")

type Result struct {
	Wrote    bool            `json:"wrote"`
	NewCount int             `json:"new_count"`
	Added    []domain.Record `json:"added,omitempty"`
	Columns  []string        `json:"columns"`
	Vanished int             `json:"vanished"`
	Total    int             `json:"total"`
	Mode     Mode            `json:"mode"`

	// Created is set when the pass bootstrapped a missing table.
	Created bool `json:"created,omitempty"`
}

// Outcome is "updated" when the pass wrote the table, "unchanged" otherwise.
func (r Result) Outcome() string {
	if r.Wrote {
		return store.OutcomeUpdated
	}
	return store.OutcomeUnchanged
}

// Message is the one-line report printed after a pass.
func (r Result) Message() string {
	if r.Wrote {
		return "New WARN notices found and added to the dataset."
	}
	return "No new WARN notices found."
}

// Reconciler runs passes against one table file. A pass holds the file's
// writer lock from before the load until after the write.
type Reconciler struct {
	Path        string
	Fetcher     types.Fetcher
	Mode        Mode
	Backup      bool
	LockTimeout time.Duration
}

// Reconcile loads the persisted table, fetches the source, and appends the
// rows selected by r.Mode. Nothing is written when there is nothing to add.
// A load failure returns before any request is made.
func (r *Reconciler) Reconcile(ctx context.Context) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "reconcile.Reconcile", trace.WithAttributes(
		attribute.String("table.path", r.Path),
		attribute.String("reconcile.mode", string(r.mode())),
	))
	defer func() { endSpan(span, res, err) }()

	log := logging.FromContext(ctx).With().Str("component", "reconcile").Logger()

	lock, err := store.AcquireLock(ctx, r.Path, r.lockTimeout())
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			log.Warn().Err(rerr).Msg("release lock")
		}
	}()

	existing, err := store.LoadTable(r.Path)
	if err != nil {
		return Result{}, err
	}

	fetched, err := r.Fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	cur, next := Align(existing, fetched)
	mode := r.mode()
	diff := Diff(mode, cur.Rows, next.Rows)

	res = Result{
		NewCount: len(diff),
		Added:    diff,
		Columns:  cur.Columns,
		Vanished: Vanished(cur.Rows, next.Rows),
		Total:    cur.Len(),
		Mode:     mode,
	}
	if len(diff) == 0 {
		log.Info().
			Int("fetched", fetched.Len()).
			Int("total", res.Total).
			Int("vanished", res.Vanished).
			Msg("no new notices")
		return res, nil
	}

	out := domain.Table{Columns: cur.Columns, Rows: append(cur.Rows, diff...)}
	if err := store.SaveTable(r.Path, out, r.Backup); err != nil {
		return Result{}, err
	}
	res.Wrote = true
	res.Total = out.Len()

	log.Info().
		Int("fetched", fetched.Len()).
		Int("added", res.NewCount).
		Int("vanished", res.Vanished).
		Int("total", res.Total).
		Str("mode", string(mode)).
		Msg("notice table updated")
	return res, nil
}

// Bootstrap creates the table from a first scrape. It fails with
// errs.ErrAlreadyExists, without fetching, when the file is present.
func (r *Reconciler) Bootstrap(ctx context.Context) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "reconcile.Bootstrap", trace.WithAttributes(
		attribute.String("table.path", r.Path),
	))
	defer func() { endSpan(span, res, err) }()

	lock, err := store.AcquireLock(ctx, r.Path, r.lockTimeout())
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = lock.Release() }()

	exists, err := store.Exists(r.Path)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return Result{}, fmt.Errorf("bootstrap %s: %w", r.Path, errs.ErrAlreadyExists)
	}

	fetched, err := r.Fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := store.SaveTable(r.Path, fetched, false); err != nil {
		return Result{}, err
	}

	logging.FromContext(ctx).Info().
		Str("component", "reconcile").
		Str("path", r.Path).
		Int("rows", fetched.Len()).
		Msg("notice table created")

	return Result{
		Wrote:    true,
		NewCount: fetched.Len(),
		Added:    fetched.Rows,
		Columns:  fetched.Columns,
		Total:    fetched.Len(),
		Mode:     r.mode(),
		Created:  true,
	}, nil
}

func (r *Reconciler) mode() Mode {
	if r.Mode == "" {
		return ModeAppendNew
	}
	return r.Mode
}

func (r *Reconciler) lockTimeout() time.Duration {
	if r.LockTimeout == 0 {
		return DefaultLockTimeout
	}
	return r.LockTimeout
}

func endSpan(span trace.Span, res Result, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errs.Code(err))
	} else {
		span.SetAttributes(
			attribute.Bool("reconcile.wrote", res.Wrote),
			attribute.Int("reconcile.added", res.NewCount),
			attribute.Int("reconcile.total", res.Total),
		)
	}
	span.End()
}
