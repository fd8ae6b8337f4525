package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/logging"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMissingColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrLocked), errors.Is(err, errs.ErrBusy), errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrNetwork), errors.Is(err, errs.ErrParse):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeErr logs err and writes it in the error envelope.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	ev := logging.FromContext(r.Context()).Warn()
	if status >= 500 && status != http.StatusServiceUnavailable && status != http.StatusBadGateway {
		ev = logging.FromContext(r.Context()).Error()
	}
	ev.Err(err).Str("component", "http").Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	WriteError(w, r, status, errs.Code(err), err.Error())
}
