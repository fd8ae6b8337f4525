package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: source.url is read from
// WARN_SOURCE_URL, notify.email.smtp_host from WARN_NOTIFY_EMAIL_SMTP_HOST.
const EnvPrefix = "WARN"

// DataDirEnv names the engine's data directory. A desktop shell can pass one;
// otherwise the working directory is used.
const DataDirEnv = "WARN_DATA_DIR"

// DataDir returns $WARN_DATA_DIR or ".".
func DataDir() string {
	if d := strings.TrimSpace(os.Getenv(DataDirEnv)); d != "" {
		return d
	}
	return "."
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// already set win over the files. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any WARN_* variables that are set.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	str := func(key string, dst *string) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	flt := func(key string, dst *float64) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	flag := func(key string, dst *bool) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	list := func(key string, dst *[]string) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = strings.Split(v.GetString(key), ",")
		}
	}

	str("app.data_dir", &cfg.App.DataDir)
	num("app.port", &cfg.App.Port)
	str("app.log_level", &cfg.App.LogLevel)
	str("app.log_format", &cfg.App.LogFormat)

	str("source.url", &cfg.Source.URL)
	num("source.timeout_seconds", &cfg.Source.TimeoutSeconds)
	str("source.user_agent", &cfg.Source.UserAgent)
	flt("source.requests_per_second", &cfg.Source.RequestsPerSecond)

	str("storage.csv_path", &cfg.Storage.CSVPath)
	flag("storage.backup", &cfg.Storage.Backup)
	num("storage.lock_timeout_seconds", &cfg.Storage.LockTimeoutSeconds)
	str("storage.history_db", &cfg.Storage.HistoryDB)
	num("storage.history_keep_days", &cfg.Storage.HistoryKeepDays)

	str("reconcile.mode", &cfg.Reconcile.Mode)

	flag("polling.enabled", &cfg.Polling.Enabled)
	num("polling.interval_minutes", &cfg.Polling.IntervalMinutes)

	flag("notify.email.enabled", &cfg.Notify.Email.Enabled)
	str("notify.email.smtp_host", &cfg.Notify.Email.SMTPHost)
	num("notify.email.smtp_port", &cfg.Notify.Email.SMTPPort)
	str("notify.email.username", &cfg.Notify.Email.Username)
	str("notify.email.from", &cfg.Notify.Email.From)
	list("notify.email.to", &cfg.Notify.Email.To)
	str("notify.email.subject", &cfg.Notify.Email.Subject)

	str("telemetry.otlp_http_endpoint", &cfg.Telemetry.OTLPHTTPEndpoint)
	str("telemetry.service_name", &cfg.Telemetry.ServiceName)
	flag("telemetry.insecure", &cfg.Telemetry.Insecure)

	return nil
}
