// engine/internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port      int    `yaml:"port" json:"port"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

type SourceConfig struct {
	URL               string  `yaml:"url" json:"url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent         string  `yaml:"user_agent" json:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
}

type StorageConfig struct {
	CSVPath            string `yaml:"csv_path" json:"csv_path"`
	Backup             bool   `yaml:"backup" json:"backup"`
	LockTimeoutSeconds int    `yaml:"lock_timeout_seconds" json:"lock_timeout_seconds"`
	HistoryDB          string `yaml:"history_db" json:"history_db"`
	HistoryKeepDays    int    `yaml:"history_keep_days" json:"history_keep_days"`
}

type ReconcileConfig struct {
	Mode string `yaml:"mode" json:"mode"` // append_new | symmetric
}

type PollingConfig struct {
	Enabled         bool `yaml:"enabled" json:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes" json:"interval_minutes"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	SMTPHost string   `yaml:"smtp_host" json:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port" json:"smtp_port"`
	Username string   `yaml:"username" json:"username"`
	From     string   `yaml:"from" json:"from"`
	To       []string `yaml:"to" json:"to"`
	Subject  string   `yaml:"subject" json:"subject"`
}

type NotifyConfig struct {
	Email EmailConfig `yaml:"email" json:"email"`
}

type TelemetryConfig struct {
	OTLPHTTPEndpoint string `yaml:"otlp_http_endpoint" json:"otlp_http_endpoint"`
	ServiceName      string `yaml:"service_name" json:"service_name"`
	Insecure         bool   `yaml:"insecure" json:"insecure"`
}

type Config struct {
	App       AppConfig       `yaml:"app" json:"app"`
	Source    SourceConfig    `yaml:"source" json:"source"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Reconcile ReconcileConfig `yaml:"reconcile" json:"reconcile"`
	Polling   PollingConfig   `yaml:"polling" json:"polling"`
	Notify    NotifyConfig    `yaml:"notify" json:"notify"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Port:     38471,
			DataDir:  ".",
			LogLevel: "info",
		},
		Source: SourceConfig{
			URL:               "https://dol.ny.gov/warn-notices",
			TimeoutSeconds:    30,
			UserAgent:         "layoffs-engine/1.0 (+local)",
			RequestsPerSecond: 0.5,
		},
		Storage: StorageConfig{
			CSVPath:            "warn_notices.csv",
			Backup:             true,
			LockTimeoutSeconds: 5,
			HistoryDB:          "layoffs.db",
			HistoryKeepDays:    90,
		},
		Reconcile: ReconcileConfig{Mode: "append_new"},
		Polling: PollingConfig{
			Enabled:         true,
			IntervalMinutes: 60,
		},
		Notify: NotifyConfig{Email: EmailConfig{
			SMTPPort: 587,
			Subject:  "New WARN notices",
		}},
		Telemetry: TelemetryConfig{ServiceName: "layoffs-engine"},
	}
}

// Load reads a YAML config file over Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// CSVPath resolves storage.csv_path against the data dir.
func (c Config) CSVPath() string { return c.resolve(c.Storage.CSVPath) }

// HistoryPath resolves storage.history_db against the data dir. Empty
// disables run history.
func (c Config) HistoryPath() string {
	if c.Storage.HistoryDB == "" {
		return ""
	}
	return c.resolve(c.Storage.HistoryDB)
}

func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.Storage.LockTimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMinutes) * time.Minute
}
