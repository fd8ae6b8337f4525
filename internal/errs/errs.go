// Package errs defines the failure taxonomy of a reconciliation pass.
// Callers match with errors.Is against the sentinels; the typed errors carry
// the detail needed for logs and API responses.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the request to the notice source did not complete
	// or the server answered with a non-2xx status.
	ErrNetwork = errors.New("network error")

	// ErrParse means the response did not contain the expected table.
	ErrParse = errors.New("parse error")

	// ErrStorage means the persisted table could not be read or written.
	ErrStorage = errors.New("storage error")

	// ErrLocked means another process holds the persisted table.
	ErrLocked = errors.New("persisted table is locked by another run")

	// ErrBusy means a pass was requested while another is still running.
	ErrBusy = errors.New("a scrape pass is already running")

	// ErrAlreadyExists is returned by bootstrap when the table file exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMissingColumns means a table lacks columns the dashboard needs.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrInvalidConfig means configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NetworkError describes a failed fetch.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// NewStatusError reports a response whose status code is not 2xx.
func NewStatusError(url string, status int) *NetworkError {
	return &NetworkError{URL: url, StatusCode: status}
}

// ParseError describes a response whose shape is not a notice table.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// StorageError describes a failed load or save of the persisted table.
type StorageError struct {
	Op   string // load | save | lock
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// MissingColumnsError lists the required columns absent from a table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %v", e.Columns)
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// Code maps an error to a short machine-readable code for API responses.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	case errors.Is(err, ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal_error"
	}
}
