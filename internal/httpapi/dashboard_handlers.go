package httpapi

import (
	"net/http"
	"strings"

	"layoffs-engine/internal/dashboard"
)

// DashboardHandler serves the read-only analytics views.
type DashboardHandler struct {
	Service func() *dashboard.Service
}

func (h DashboardHandler) Notices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Service().Notices(strings.TrimSpace(q.Get("state")), strings.TrimSpace(q.Get("industry")))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (h DashboardHandler) States(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service().ByState()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"states": out})
}

func (h DashboardHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service().Timeline()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"points": out})
}

func (h DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service().Summary()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (h DashboardHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := strings.TrimSpace(q.Get("state"))
	industry := strings.TrimSpace(q.Get("industry"))
	if state == "" || industry == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "state and industry are required")
		return
	}
	out, err := h.Service().Lookup(state, industry)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (h DashboardHandler) Options(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service().Options()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, out)
}
