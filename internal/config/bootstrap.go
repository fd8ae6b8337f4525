package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"layoffs-engine/internal/errs"
)

// EnsureUserConfig returns the path of config.yml in dataDir, creating it
// from defaultPath first if needed. When defaultPath does not exist the
// built-in Defaults are written instead.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) || defaultPath == "" {
		cfg := Defaults()
		cfg.App.DataDir = dataDir
		return userPath, SaveAtomic(userPath, cfg)
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}

// Resolved is a fully layered configuration and where it came from.
type Resolved struct {
	Config     Config
	Path       string
	Validation Validation
}

// Resolve builds the effective configuration for dataDir: .env files, then
// config.yml (created on first run), then config.local.yml, then WARN_*
// variables. It fails with errs.ErrInvalidConfig when validation finds
// errors; warnings are returned in the Validation.
func Resolve(dataDir, defaultPath string) (Resolved, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Resolved{}, err
	}
	if err := LoadDotEnv(".env", filepath.Join(dataDir, ".env")); err != nil {
		return Resolved{}, err
	}

	path, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		return Resolved{}, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := Load(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("config load (%s): %w", path, err)
	}
	if err := OverlayLocal(&cfg, filepath.Join(dataDir, LocalFile)); err != nil {
		return Resolved{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Resolved{}, err
	}
	if cfg.App.DataDir == "" || cfg.App.DataDir == "." {
		cfg.App.DataDir = dataDir
	}

	norm, v := NormalizeAndValidate(cfg)
	res := Resolved{Config: norm, Path: path, Validation: v}
	if !v.OK() {
		return res, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, v.Errors)
	}
	return res, nil
}
