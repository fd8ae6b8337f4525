// Package poll drives reconciliation passes on a schedule or on demand.
package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/events"
	"layoffs-engine/internal/notify"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scheduler"
	"layoffs-engine/internal/scrape/types"
	"layoffs-engine/internal/store"
)

// Runner performs a single pass. *reconcile.Reconciler satisfies it.
type Runner interface {
	Reconcile(ctx context.Context) (reconcile.Result, error)
}

// Poller serializes passes. Everything except Runner is optional.
type Poller struct {
	Runner     Runner
	Status     *atomic.Value // types.ScrapeStatus
	Hub        *events.Hub
	History    *store.History
	Notifier   notify.Notifier
	Invalidate func()
	Timeout    time.Duration

	running atomic.Bool
	now     func() time.Time
}

// Running reports whether a pass is in flight.
func (p *Poller) Running() bool { return p.running.Load() }

// Start runs passes every interval until ctx is cancelled. enabled is checked
// before each pass so polling can be switched off without a restart.
func (p *Poller) Start(ctx context.Context, interval time.Duration, enabled func() bool) {
	go scheduler.Every(ctx, interval, "poll", func(ctx context.Context) error {
		if enabled != nil && !enabled() {
			return nil
		}
		_, err := p.RunOnce(ctx, TriggerSchedule)
		if errors.Is(err, errs.ErrBusy) {
			return nil
		}
		return err
	})
}

func (p *Poller) setStatus(update func(*types.ScrapeStatus)) {
	if p.Status == nil {
		return
	}
	st, _ := p.Status.Load().(types.ScrapeStatus)
	update(&st)
	p.Status.Store(st)
}

func (p *Poller) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
