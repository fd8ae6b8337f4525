package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/dashboard"
	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/events"
	"layoffs-engine/internal/poll"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scrape/types"
	"layoffs-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context) (reconcile.Result, error)

func (f runnerFunc) Reconcile(ctx context.Context) (reconcile.Result, error) { return f(ctx) }

type fixture struct {
	deps    Deps
	handler http.Handler
	cfg     config.Config
}

func newFixture(t *testing.T, tbl *domain.Table) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.App.DataDir = dir
	if tbl != nil {
		require.NoError(t, store.SaveTable(cfg.CSVPath(), *tbl, false))
	}

	var cfgVal, status atomic.Value
	cfgVal.Store(cfg)
	status.Store(types.ScrapeStatus{})

	db, err := store.Open(context.Background(), filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	hist := store.NewHistory(db)

	hub := events.NewHub()
	cache := dashboard.NewCache()
	userCfg := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(userCfg, cfg))

	d := Deps{
		Hub:          hub,
		CfgVal:       &cfgVal,
		ScrapeStatus: &status,
		UserCfgPath:  userCfg,
		LoadCfg: func() (config.Config, error) {
			c, err := config.Load(userCfg)
			c.App.DataDir = dir
			return c, err
		},
		Cache:   cache,
		History: hist,
		Poller: &poll.Poller{
			Runner: runnerFunc(func(context.Context) (reconcile.Result, error) {
				return reconcile.Result{Wrote: true, NewCount: 1, Total: 7, Mode: reconcile.ModeAppendNew}, nil
			}),
			Status:  &status,
			Hub:     hub,
			History: hist,
		},
	}
	return &fixture{
		deps:    d,
		cfg:     cfg,
		handler: Chain(NewMux(d), RequestID, Recover, AccessLog, Cors),
	}
}

func (f *fixture) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"Company", "State", "Industry", "Number of Workers", "WARN Received Date"},
		Rows: []domain.Record{
			{"Acme", "New York", "Retail", "100", "03/01/2024"},
			{"Bolt", "New York", "Retail", "1,000", "03/02/2024"},
			{"Dyne", "Texas", "Retail", "60", "03/01/2024"},
		},
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, sampleTable())
	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDashboardEndpoints(t *testing.T) {
	f := newFixture(t, sampleTable())

	rec := f.do(t, http.MethodGet, "/notices?state=Texas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notices := decode[dashboard.Notices](t, rec)
	require.Len(t, notices.Rows, 1)
	assert.Equal(t, "Dyne", notices.Rows[0][0])

	rec = f.do(t, http.MethodGet, "/stats/states", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	states := decode[struct {
		States []dashboard.StateStat `json:"states"`
	}](t, rec)
	require.Len(t, states.States, 2)
	assert.Equal(t, "New York", states.States[0].State)
	assert.Equal(t, 1100.0, states.States[0].TotalWorkers)

	rec = f.do(t, http.MethodGet, "/stats/timeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"2024-03-01"`)

	rec = f.do(t, http.MethodGet, "/stats/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[dashboard.Summary](t, rec)
	assert.Equal(t, 3, summary.Notices)
	assert.Equal(t, 1160.0, summary.TotalWorkers)

	rec = f.do(t, http.MethodGet, "/lookup?state=New+York&industry=Retail", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lookup := decode[dashboard.LookupResult](t, rec)
	assert.Equal(t, 1100.0, lookup.TotalWorkers)
	assert.Equal(t, 2, lookup.Companies)

	rec = f.do(t, http.MethodGet, "/lookup/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decode[dashboard.Options](t, rec)
	assert.Equal(t, []string{"New York", "Texas"}, opts.States)
	assert.Equal(t, []string{"Retail"}, opts.Industries)
}

func TestDashboardErrors(t *testing.T) {
	testCases := []struct {
		name   string
		table  *domain.Table
		target string
		status int
		code   string
	}{
		{"missing file", nil, "/stats/states", http.StatusServiceUnavailable, "storage_error"},
		{"missing columns", &domain.Table{Columns: []string{"Company"}, Rows: []domain.Record{{"Acme"}}}, "/stats/timeline", http.StatusUnprocessableEntity, "missing_columns"},
		{"lookup without params", sampleTable(), "/lookup?state=Texas", http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.table)
			rec := f.do(t, http.MethodGet, tc.target, nil)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			apiErr := decode[APIError](t, rec)
			assert.Equal(t, tc.code, apiErr.Error.Code)
			assert.NotEmpty(t, apiErr.Error.RequestID)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, sampleTable())
	rec := f.do(t, http.MethodDelete, "/notices", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScrapeRunWaitAndStatus(t *testing.T) {
	f := newFixture(t, sampleTable())

	rec := f.do(t, http.MethodPost, "/scrape/run?wait=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["wrote"])
	assert.EqualValues(t, 1, body["new_count"])
	assert.Equal(t, store.OutcomeUpdated, body["outcome"])

	rec = f.do(t, http.MethodGet, "/scrape/status", nil)
	st := decode[types.ScrapeStatus](t, rec)
	assert.False(t, st.Running)
	assert.Equal(t, 1, st.LastAdded)
	assert.Equal(t, poll.TriggerManual, st.LastTrigger)

	rec = f.do(t, http.MethodGet, "/runs?limit=5", nil)
	runs := decode[struct {
		Runs    []store.Run `json:"runs"`
		Enabled bool        `json:"enabled"`
	}](t, rec)
	assert.True(t, runs.Enabled)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, poll.TriggerManual, runs.Runs[0].Trigger)
}

func TestScrapeRunAsyncAndBusy(t *testing.T) {
	f := newFixture(t, sampleTable())
	release := make(chan struct{})
	f.deps.Poller.Runner = runnerFunc(func(context.Context) (reconcile.Result, error) {
		<-release
		return reconcile.Result{}, nil
	})

	rec := f.do(t, http.MethodPost, "/scrape/run", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, f.deps.Poller.Running, time.Second, 5*time.Millisecond)
	rec = f.do(t, http.MethodPost, "/scrape/run", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "busy", decode[APIError](t, rec).Error.Code)

	close(release)
	assert.Eventually(t, func() bool { return !f.deps.Poller.Running() }, time.Second, 5*time.Millisecond)
}

func TestConfigPutAndValidate(t *testing.T) {
	f := newFixture(t, sampleTable())

	next := f.cfg
	next.Polling.IntervalMinutes = 15
	body, err := json.Marshal(next)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/config", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 15, f.deps.CfgVal.Load().(config.Config).Polling.IntervalMinutes)

	next.Reconcile.Mode = "sideways"
	body, _ = json.Marshal(next)
	rec = f.do(t, http.MethodPut, "/config", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	v := decode[config.Validation](t, rec)
	require.NotEmpty(t, v.Errors)
	assert.Contains(t, v.Errors[0], "reconcile.mode")
	assert.Equal(t, 15, f.deps.CfgVal.Load().(config.Config).Polling.IntervalMinutes, "rejected config is not applied")

	rec = f.do(t, http.MethodPut, "/config", []byte(`{"nope":1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/config/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[config.Validation](t, rec).Errors)

	rec = f.do(t, http.MethodGet, "/config/path", nil)
	assert.Contains(t, rec.Body.String(), "config.yml")
}

func TestRecoverWritesEnvelope(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover, RequestID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decode[APIError](t, rec).Error.Code)
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t, sampleTable())
	req := httptest.NewRequest(http.MethodOptions, "/notices", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsLoopback(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	assert.True(t, IsLoopback(req))
	req.RemoteAddr = "[::1]:5555"
	assert.True(t, IsLoopback(req))
	req.RemoteAddr = "10.0.0.4:5555"
	assert.False(t, IsLoopback(req))
}

func TestServeSSE(t *testing.T) {
	f := newFixture(t, sampleTable())
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	lines := bufio.NewScanner(res.Body)
	nextData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		return ""
	}
	assert.Contains(t, nextData(), events.TypePing)

	require.Eventually(t, func() bool { return f.deps.Hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	f.deps.Hub.Emit("", events.TypeNoticesUpdated, map[string]int{"added": 2})
	assert.Contains(t, nextData(), events.TypeNoticesUpdated)
}
