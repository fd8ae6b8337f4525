package poll

import (
	"context"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/notify"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scrape/util"
	"layoffs-engine/internal/store"
)

// CheckOnce runs a single pass outside the server. History and the email
// digest apply; there is no event hub or dashboard cache to update.
func CheckOnce(ctx context.Context, cfg config.Config) (reconcile.Result, error) {
	hist, err := store.OpenHistory(ctx, cfg.HistoryPath())
	if err != nil {
		return reconcile.Result{}, err
	}
	defer hist.Close()

	p := &Poller{
		Runner:   NewReconciler(ctx, cfg, util.NewHostLimiter(cfg.Source.RequestsPerSecond, 1)),
		History:  hist,
		Notifier: notify.NewMailer(cfg.Notify.Email),
	}
	return p.RunOnce(ctx, TriggerCLI)
}
