package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSMTPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetSMTPPassword(w http.ResponseWriter, r *http.Request) {
	if !IsLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	var req setSMTPPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetSMTPPassword(secrets.SMTPKeyringAccount(cfg.Notify.Email), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteSMTPPassword(w http.ResponseWriter, r *http.Request) {
	if !IsLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteSMTPPassword(secrets.SMTPKeyringAccount(cfg.Notify.Email)); err != nil {
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
