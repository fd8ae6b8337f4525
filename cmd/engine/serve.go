package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/dashboard"
	"layoffs-engine/internal/events"
	"layoffs-engine/internal/httpapi"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/notify"
	"layoffs-engine/internal/poll"
	"layoffs-engine/internal/scrape/types"
	"layoffs-engine/internal/scrape/util"
	"layoffs-engine/internal/store"
	"layoffs-engine/internal/telemetry"

	"github.com/spf13/cobra"
)

// ShutdownTokenEnv pins the /shutdown token; otherwise a random one is
// written to engine.token in the data dir.
const ShutdownTokenEnv = "WARN_SHUTDOWN_TOKEN"

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the poller and the HTTP API",
		Long: `serve keeps the notice CSV in sync on polling.interval_minutes and serves
the dashboard API on 127.0.0.1:<app.port>. While the CSV is missing, each
pass tries to create it from a bootstrap scrape.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	log := logging.Component("engine")

	shutdownTelemetry, err := telemetry.Setup(ctx, a.cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	var cfgVal, status atomic.Value
	cfgVal.Store(a.cfg)
	status.Store(types.ScrapeStatus{})
	current := func() config.Config { return cfgVal.Load().(config.Config) }

	hist, err := store.OpenHistory(ctx, a.cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer hist.Close()
	if hist != nil && a.cfg.Storage.HistoryKeepDays > 0 {
		keep := time.Duration(a.cfg.Storage.HistoryKeepDays) * 24 * time.Hour
		if n, err := hist.Cleanup(ctx, keep); err != nil {
			log.Warn().Err(err).Msg("history cleanup")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Msg("history cleanup")
		}
	}

	hub := events.NewHub()
	cache := dashboard.NewCache()
	limiter := util.NewHostLimiter(a.cfg.Source.RequestsPerSecond, 1)

	poller := &poll.Poller{
		Runner:     &poll.ConfigRunner{Config: &cfgVal, Limiter: limiter, BootstrapMissing: true},
		Status:     &status,
		Hub:        hub,
		History:    hist,
		Notifier:   notify.Live(func() config.EmailConfig { return current().Notify.Email }),
		Invalidate: func() { cache.Invalidate(current().CSVPath()) },
		Timeout:    a.cfg.SourceTimeout() + a.cfg.LockTimeout() + 30*time.Second,
	}

	go func() {
		// Passes create a missing CSV themselves. With polling off, make
		// one attempt at startup so the dashboard has data.
		if !current().Polling.Enabled {
			if ok, err := store.Exists(current().CSVPath()); err == nil && !ok {
				_, _ = poller.RunOnce(ctx, poll.TriggerStartup)
			}
		}
		// The interval is read once; edits to it apply on restart.
		poller.Start(ctx, a.cfg.PollInterval(), func() bool { return current().Polling.Enabled })
	}()

	deps := httpapi.Deps{
		Hub:          hub,
		CfgVal:       &cfgVal,
		ScrapeStatus: &status,
		UserCfgPath:  a.cfgPath,
		LoadCfg: func() (config.Config, error) {
			res, err := config.Resolve(a.dataDir, a.defaultCfg)
			return res.Config, err
		},
		Cache:   cache,
		History: hist,
		Poller:  poller,
	}
	mux := httpapi.NewMux(deps)

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := a.shutdownToken()
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info().
		Str("addr", "http://"+addr).
		Str("table", a.cfg.CSVPath()).
		Str("history", a.cfg.HistoryPath()).
		Msg("engine listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		<-errCh
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	log.Info().Msg("engine stopped")
	return nil
}

func (a *app) shutdownToken() (string, error) {
	if t := strings.TrimSpace(os.Getenv(ShutdownTokenEnv)); t != "" {
		return t, nil
	}
	t, err := randomToken(16)
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.cfg.App.DataDir, "engine.token")
	if err := os.WriteFile(path, []byte(t+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write shutdown token: %w", err)
	}
	return t, nil
}
