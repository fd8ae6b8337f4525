package types

import (
	"context"

	"layoffs-engine/internal/domain"
)

// Fetcher produces the current notice table from a source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (domain.Table, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (domain.Table, error)

func (f FetcherFunc) Name() string { return "func" }

func (f FetcherFunc) Fetch(ctx context.Context) (domain.Table, error) { return f(ctx) }

// ScrapeStatus is the last-known state of the poller, served to the UI.
type ScrapeStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastCode    string `json:"last_code,omitempty"`
	LastTrigger string `json:"last_trigger,omitempty"`
	LastOutcome string `json:"last_outcome,omitempty"`
	LastAdded   int    `json:"last_added"`
	Total       int    `json:"total"`
	Running     bool   `json:"running"`
}
