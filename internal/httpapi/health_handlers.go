package httpapi

import (
	"net/http"
	"sync/atomic"
	"time"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/store"
)

type HealthHandler struct {
	CfgVal *atomic.Value
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok {
			exists, _ := store.Exists(cfg.CSVPath())
			out["table"] = map[string]any{"path": cfg.CSVPath(), "exists": exists}
		}
	}
	writeJSON(w, out)
}
