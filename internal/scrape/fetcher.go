package scrape

import (
	"bytes"
	"context"
	"mime"
	"strings"
	"time"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/scrape/util"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultSourceURL = "https://dol.ny.gov/warn-notices"

var tracer = otel.Tracer("layoffs-engine/internal/scrape")

type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Fetcher downloads the WARN notice page and parses its table.
// It issues exactly one GET per call and never retries.
type Fetcher struct {
	cfg     Config
	client  *resty.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Fetcher {
	if cfg.URL == "" {
		cfg.URL = DefaultSourceURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "layoffs-engine/1.0 (+local)"
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	return &Fetcher{cfg: cfg, client: client, limiter: limiter}
}

func (f *Fetcher) Name() string { return "warn" }

// URL returns the source the fetcher reads from.
func (f *Fetcher) URL() string { return f.cfg.URL }

func (f *Fetcher) Fetch(ctx context.Context) (domain.Table, error) {
	ctx, span := tracer.Start(ctx, "scrape.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("source.url", f.cfg.URL))

	table, err := f.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return domain.Table{}, err
	}
	span.SetAttributes(
		attribute.Int("table.columns", len(table.Columns)),
		attribute.Int("table.rows", len(table.Rows)),
		attribute.Int("table.ragged", len(table.Ragged)),
	)
	return table, nil
}

func (f *Fetcher) fetch(ctx context.Context) (domain.Table, error) {
	log := logging.FromContext(ctx).With().Str("component", "scrape").Logger()

	if err := f.limiter.WaitURL(ctx, f.cfg.URL); err != nil {
		return domain.Table{}, &errs.NetworkError{URL: f.cfg.URL, Err: err}
	}

	start := time.Now()
	res, err := f.client.R().SetContext(ctx).Get(f.cfg.URL)
	if err != nil {
		return domain.Table{}, &errs.NetworkError{URL: f.cfg.URL, Err: err}
	}
	if !res.IsSuccess() {
		return domain.Table{}, errs.NewStatusError(f.cfg.URL, res.StatusCode())
	}
	if ct := res.Header().Get("Content-Type"); ct != "" && !isHTML(ct) {
		return domain.Table{}, &errs.ParseError{Reason: "unexpected content type " + ct}
	}

	table, err := ParseTable(bytes.NewReader(res.Body()))
	if err != nil {
		return domain.Table{}, err
	}

	log.Info().
		Str("url", f.cfg.URL).
		Int("status", res.StatusCode()).
		Int("bytes", len(res.Body())).
		Int("rows", len(table.Rows)).
		Int64("dur_ms", time.Since(start).Milliseconds()).
		Msg("fetched notice table")
	if len(table.Ragged) > 0 {
		log.Warn().Ints("rows", table.Ragged).Msg("padded rows with fewer cells than the header")
	}
	return table, nil
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	mt = strings.ToLower(mt)
	return mt == "text/html" || mt == "application/xhtml+xml"
}
