package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/poll"
	"layoffs-engine/internal/scrape/types"
)

type ScrapeHandler struct {
	ScrapeStatus *atomic.Value // types.ScrapeStatus
	Poller       *poll.Poller
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, _ := h.ScrapeStatus.Load().(types.ScrapeStatus)
	writeJSON(w, st)
}

// Run starts a manual pass. By default it returns 202 at once and the outcome
// arrives over /events; ?wait=true blocks and returns the result.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Poller.Running() {
		WriteError(w, r, http.StatusConflict, errs.Code(errs.ErrBusy), errs.ErrBusy.Error())
		return
	}

	if queryBool(r, "wait") {
		res, err := h.Poller.RunOnce(r.Context(), poll.TriggerManual)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, map[string]any{
			"ok":        true,
			"wrote":     res.Wrote,
			"new_count": res.NewCount,
			"vanished":  res.Vanished,
			"total":     res.Total,
			"outcome":   res.Outcome(),
		})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := h.Poller.RunOnce(ctx, poll.TriggerManual); err != nil {
			logging.FromContext(ctx).Debug().Err(err).Str("component", "http").Msg("manual pass ended with error")
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
