package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File, when set, receives a JSON copy of every log line.
	File string `toml:"file"`
}

// Output selects how chapter lists are rendered.
type Output struct {
	Format string `toml:"format"`
}

// Bluray tunes the degenerate playlist fallback.
type Bluray struct {
	SweepMinSeconds float64 `toml:"sweep_min_seconds"`
	SweepRatio      float64 `toml:"sweep_ratio"`
	// ExtraPatterns are appended to the built-in trailing segment patterns.
	ExtraPatterns [][]int `toml:"extra_patterns"`
}

// SweepMinDrift returns the absolute sweep tolerance.
func (b Bluray) SweepMinDrift() time.Duration {
	return time.Duration(b.SweepMinSeconds * float64(time.Second))
}

// Cache contains configuration for the parse result cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Scan contains configuration for batch scans of a disc tree.
type Scan struct {
	Workers int `toml:"workers"`
}

// Config encapsulates all configuration values for discchapters.
//
// Sections:
//   - Logging: log format, level, optional JSON log file
//   - Output: default rendering of chapter lists
//   - Bluray: fallback sweep tolerances and extra rounding patterns
//   - Cache: sqlite cache of parse results keyed by file content
//   - Scan: worker count for the scan command
type Config struct {
	Logging Logging `toml:"logging"`
	Output  Output  `toml:"output"`
	Bluray  Bluray  `toml:"bluray"`
	Cache   Cache   `toml:"cache"`
	Scan    Scan    `toml:"scan"`
}

// DefaultConfigPath is the per-user config location with ~ expanded.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load builds the effective configuration. An explicit path that does not
// exist falls back to defaults, as does an empty path when neither the user
// nor the project config is present. It returns the config, the path consulted
// and whether that file was read.
func Load(path string) (*Config, string, bool, error) {
	source, found, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if found {
		if err := decodeFile(source, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, found, nil
}

// decodeFile overlays the TOML file at path onto cfg. Unknown keys are errors
// so typos do not silently fall back to defaults.
func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	err = decoder.Decode(cfg)
	var strict *toml.StrictMissingError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: %s", path, strict.String())
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

// locate picks the config file to read. The first existing candidate wins;
// with none present the first candidate is reported as not found.
func locate(explicit string) (string, bool, error) {
	var candidates []string
	if explicit != "" {
		path, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		candidates = []string{path}
	} else {
		user, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		project, err := filepath.Abs(defaultProjectConfig)
		if err != nil {
			return "", false, err
		}
		candidates = []string{user, project}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist) && explicit != "":
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// expandPath resolves a leading ~ to the home directory and makes the result
// absolute. Empty input stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimLeft(value[1:], `/\`))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same ~ and absolute-path rules used for config values.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// SampleConfig returns the embedded, commented sample file.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample file to path, creating parent directories.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
