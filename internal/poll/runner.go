package poll

import (
	"context"
	"errors"
	"sync/atomic"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scrape"
	"layoffs-engine/internal/scrape/util"
	"layoffs-engine/internal/store"
)

// NewReconciler builds a reconciler for the WARN source described by cfg.
// cfg is expected to have passed config.Validate; an unknown reconcile mode
// is logged and treated as append_new.
func NewReconciler(ctx context.Context, cfg config.Config, limiter *util.HostLimiter) *reconcile.Reconciler {
	mode, err := reconcile.ParseMode(cfg.Reconcile.Mode)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "poll").
			Err(err).
			Str("fallback", string(reconcile.ModeAppendNew)).
			Msg("invalid reconcile.mode")
		mode = reconcile.ModeAppendNew
	}
	return &reconcile.Reconciler{
		Path: cfg.CSVPath(),
		Fetcher: scrape.New(scrape.Config{
			URL:       cfg.Source.URL,
			Timeout:   cfg.SourceTimeout(),
			UserAgent: cfg.Source.UserAgent,
		}, limiter),
		Mode:        mode,
		Backup:      cfg.Storage.Backup,
		LockTimeout: cfg.LockTimeout(),
	}
}

// ConfigRunner rebuilds its reconciler from the live config on every pass,
// so edits made through the API apply to the next pass.
type ConfigRunner struct {
	Config  *atomic.Value // config.Config
	Limiter *util.HostLimiter

	// BootstrapMissing makes a pass create the table from a first scrape
	// when the file is absent, so a failed first scrape is retried on the
	// next pass.
	BootstrapMissing bool
}

func (c *ConfigRunner) Reconcile(ctx context.Context) (reconcile.Result, error) {
	cfg, _ := c.Config.Load().(config.Config)
	r := NewReconciler(ctx, cfg, c.Limiter)

	if c.BootstrapMissing {
		exists, err := store.Exists(r.Path)
		if err != nil {
			return reconcile.Result{}, err
		}
		if !exists {
			res, err := r.Bootstrap(ctx)
			if !errors.Is(err, errs.ErrAlreadyExists) {
				return res, err
			}
		}
	}
	return r.Reconcile(ctx)
}
