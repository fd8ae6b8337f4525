package poll

import (
	"context"
	"time"

	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/events"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scrape/types"
	"layoffs-engine/internal/store"

	"golang.org/x/sync/errgroup"
)

// Triggers recorded in run history.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerCLI      = "cli"
	TriggerStartup  = "startup"
)

// RunOnce performs one reconciliation pass and fans its result out to the
// status, the event hub, the dashboard cache, history and the notifier.
// It returns errs.ErrBusy if another pass is in flight.
func (p *Poller) RunOnce(ctx context.Context, trigger string) (reconcile.Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return reconcile.Result{}, errs.ErrBusy
	}
	defer p.running.Store(false)

	ctx = logging.WithField(ctx, "trigger", trigger)
	log := logging.FromContext(ctx).With().Str("component", "poll").Logger()

	started := p.clock()
	p.setStatus(func(st *types.ScrapeStatus) {
		st.Running = true
		st.LastRunAt = started.Format(time.RFC3339)
		st.LastTrigger = trigger
	})
	p.emit(events.TypeScrapeStarted, map[string]string{"trigger": trigger})

	passCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		passCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	log.Info().Msg("pass started")
	res, err := p.Runner.Reconcile(passCtx)
	finished := p.clock()

	run := store.Run{
		StartedAt:  started,
		FinishedAt: finished,
		Trigger:    trigger,
		Mode:       string(res.Mode),
		Added:      res.NewCount,
		Vanished:   res.Vanished,
		Total:      res.Total,
	}

	if err != nil {
		run.Outcome = store.OutcomeFailed
		run.Error = err.Error()
		p.setStatus(func(st *types.ScrapeStatus) {
			st.Running = false
			st.LastError = err.Error()
			st.LastCode = errs.Code(err)
			st.LastOutcome = store.OutcomeFailed
			st.LastAdded = 0
		})
		p.emit(events.TypeScrapeFailed, map[string]string{"error": err.Error(), "code": errs.Code(err)})
		log.Error().Err(err).Str("code", errs.Code(err)).Msg("pass failed")
	} else {
		run.Outcome = res.Outcome()
		p.setStatus(func(st *types.ScrapeStatus) {
			st.Running = false
			st.LastError = ""
			st.LastCode = ""
			st.LastOkAt = finished.Format(time.RFC3339)
			st.LastOutcome = run.Outcome
			st.LastAdded = res.NewCount
			st.Total = res.Total
		})
		if res.Wrote && p.Invalidate != nil {
			p.Invalidate()
		}
		p.emit(events.TypeScrapeFinished, map[string]any{"outcome": run.Outcome, "added": res.NewCount})
		if res.Wrote {
			p.emit(events.TypeNoticesUpdated, map[string]int{"added": res.NewCount, "total": res.Total})
		}
		log.Info().
			Str("outcome", run.Outcome).
			Int("added", res.NewCount).
			Int("total", res.Total).
			Dur("took", finished.Sub(started)).
			Msg("pass finished")
	}

	// Follow-ups must not turn a completed pass into a failed one.
	var g errgroup.Group
	if p.History != nil {
		g.Go(func() error {
			_, herr := p.History.Insert(context.WithoutCancel(ctx), run)
			return herr
		})
	}
	// A freshly created table is the baseline, not news.
	if err == nil && res.Wrote && !res.Created && p.Notifier != nil {
		g.Go(func() error { return p.Notifier.Notify(context.WithoutCancel(ctx), res) })
	}
	if ferr := g.Wait(); ferr != nil {
		log.Warn().Err(ferr).Msg("pass follow-up failed")
	}

	return res, err
}

func (p *Poller) emit(typ string, data any) {
	if p.Hub != nil {
		p.Hub.Emit("", typ, data)
	}
}
