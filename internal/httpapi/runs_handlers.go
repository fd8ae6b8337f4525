package httpapi

import (
	"net/http"
	"sync/atomic"
	"time"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/store"
)

type RunsHandler struct {
	History *store.History
	CfgVal  *atomic.Value // stores config.Config
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, map[string]any{"runs": []store.Run{}, "enabled": false})
		return
	}
	runs, err := h.History.List(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, map[string]any{"runs": runs, "enabled": true})
}

// Cleanup prunes history older than storage.history_keep_days. Local only.
func (h RunsHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if !IsLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if h.History == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	keep := time.Duration(cfg.Storage.HistoryKeepDays) * 24 * time.Hour
	deleted, err := h.History.Cleanup(r.Context(), keep)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"deleted": deleted})
}
