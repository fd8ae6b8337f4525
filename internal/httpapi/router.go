package httpapi

import "net/http"

// NewMux returns the raw mux so main can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Dashboard
	dh := DashboardHandler{Service: d.dashboard}
	mux.HandleFunc("/notices", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Notices,
	}))
	mux.HandleFunc("/stats/states", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.States,
	}))
	mux.HandleFunc("/stats/timeline", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Timeline,
	}))
	mux.HandleFunc("/stats/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Summary,
	}))
	mux.HandleFunc("/lookup", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Lookup,
	}))
	mux.HandleFunc("/lookup/options", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Options,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/smtp", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetSMTPPassword,
		http.MethodDelete: sh.DeleteSMTPPassword,
	}))

	// Scrape
	sch := ScrapeHandler{ScrapeStatus: d.ScrapeStatus, Poller: d.Poller}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	// Run history
	rh := RunsHandler{History: d.History, CfgVal: d.CfgVal}
	mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/runs/cleanup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Cleanup,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
