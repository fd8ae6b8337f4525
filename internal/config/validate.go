package config

import (
	"fmt"
	"net/mail"
	"strings"

	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/scrape/util"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and the problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Notify.Email.To = trimList(out.Notify.Email.To)
	out.Storage.CSVPath = strings.TrimSpace(out.Storage.CSVPath)
	out.Reconcile.Mode = strings.ToLower(strings.TrimSpace(out.Reconcile.Mode))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}
	switch out.App.LogFormat {
	case "", "json", "console":
	default:
		res.addErr("app.log_format must be json or console, got %q", out.App.LogFormat)
	}

	// source
	if u, err := util.CanonicalSourceURL(out.Source.URL); err != nil {
		res.addErr("source.url: %v", err)
	} else {
		out.Source.URL = u
	}
	if out.Source.TimeoutSeconds <= 0 {
		res.addErr("source.timeout_seconds must be > 0")
	}
	if out.Source.RequestsPerSecond < 0 {
		res.addErr("source.requests_per_second must be >= 0")
	} else if out.Source.RequestsPerSecond == 0 {
		res.addWarn("source.requests_per_second is 0; requests to the source are not rate limited.")
	}

	// storage
	if out.Storage.CSVPath == "" {
		res.addErr("storage.csv_path is required")
	} else if !strings.HasSuffix(strings.ToLower(out.Storage.CSVPath), ".csv") {
		res.addWarn("storage.csv_path %q does not end in .csv", out.Storage.CSVPath)
	}
	if out.Storage.LockTimeoutSeconds < 0 {
		res.addErr("storage.lock_timeout_seconds must be >= 0")
	}
	if out.Storage.HistoryKeepDays < 0 {
		res.addErr("storage.history_keep_days must be >= 0")
	}

	if _, err := reconcile.ParseMode(out.Reconcile.Mode); err != nil {
		res.addErr("reconcile.mode: %v", err)
	} else if reconcile.Mode(out.Reconcile.Mode) == reconcile.ModeSymmetric {
		res.addWarn("reconcile.mode is symmetric; rows removed from the source will be appended again as duplicates.")
	}

	// polling sanity
	if out.Polling.IntervalMinutes <= 0 {
		res.addErr("polling.interval_minutes must be > 0")
	} else if out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d); the source updates a few times a week.", out.Polling.IntervalMinutes)
	}

	// email required fields if enabled (password not required here; it's in the keychain)
	em := out.Notify.Email
	if em.Enabled {
		if strings.TrimSpace(em.SMTPHost) == "" {
			res.addErr("notify.email.smtp_host is required when notify.email.enabled=true")
		}
		if em.SMTPPort <= 0 || em.SMTPPort > 65535 {
			res.addErr("notify.email.smtp_port must be 1..65535")
		}
		if _, err := mail.ParseAddress(em.From); err != nil {
			res.addErr("notify.email.from must be an email address")
		}
		if len(em.To) == 0 {
			res.addErr("notify.email.to needs at least one recipient")
		}
		for _, to := range em.To {
			if _, err := mail.ParseAddress(to); err != nil {
				res.addErr("notify.email.to: %q is not an email address", to)
			}
		}
	}

	if out.Telemetry.OTLPHTTPEndpoint != "" && out.Telemetry.ServiceName == "" {
		res.addWarn("telemetry.service_name is empty; spans will be reported as unknown_service.")
	}

	return out, res
}
