package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// mirrorFile is the YAML shape of a mirrors file:
//
//	mirrors:
//	  - https://inv.example
//	  - https://iv.other.example
type mirrorFile struct {
	Mirrors []string `yaml:"mirrors"`
}

// LoadMirrorFile reads the mirror pool from a YAML file.
func LoadMirrorFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("read mirrors file: %w", err)
	}
	var f mirrorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mirrors file: %w", err)
	}

	mirrors := make([]string, 0, len(f.Mirrors))
	for _, m := range f.Mirrors {
		if m != "" {
			mirrors = append(mirrors, m)
		}
	}
	if len(mirrors) == 0 {
		return nil, fmt.Errorf("mirrors file %s lists no mirrors", path)
	}
	return mirrors, nil
}

// Resolve applies the configured mirror file over the environment-derived
// config and falls back to the built-in defaults when neither supplies a
// pool. The returned config is validated.
func Resolve(cfg AppConfig) (AppConfig, error) {
	if cfg.MirrorFile != "" {
		mirrors, err := LoadMirrorFile(cfg.MirrorFile)
		if err != nil {
			return AppConfig{}, err
		}
		cfg.Mirrors = mirrors
	}
	if len(cfg.Mirrors) == 0 {
		cfg.Mirrors = append([]string(nil), DefaultMirrors...)
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
