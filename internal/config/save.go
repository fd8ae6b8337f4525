package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"layoffs-engine/internal/errs"

	"gopkg.in/yaml.v3"
)

// Validate reports the errors NormalizeAndValidate finds, as one error
// matching errs.ErrInvalidConfig.
func Validate(cfg Config) error {
	_, v := NormalizeAndValidate(cfg)
	if v.OK() {
		return nil
	}
	return fmt.Errorf("%w:\n- %s", errs.ErrInvalidConfig, strings.Join(v.Errors, "\n- "))
}

// SaveAtomic validates cfg and replaces path with it, keeping the previous
// file as path.bak.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
