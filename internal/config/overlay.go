// config/overlay.go
package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// LocalFile is the optional per-machine overlay next to config.yml.
const LocalFile = "config.local.yml"

// OverlayLocal merges the YAML file at path over cfg. Only non-zero values
// in the overlay take effect, so it can switch features on but not off.
// A missing file is not an error.
func OverlayLocal(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var local Config
	if err := yaml.Unmarshal(b, &local); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, local, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge %s: %w", path, err)
	}
	return nil
}
