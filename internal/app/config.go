package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/corey/emcee/internal/domain/search"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultAlphabet is the key alphabet when none is configured.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Config is the project configuration, read from .emcee/config.yaml.
type Config struct {
	Alphabet   string `yaml:"alphabet"`
	Boundary   string `yaml:"boundary"`
	Seed       uint64 `yaml:"seed"`
	Iterations int    `yaml:"iterations"`
	Model      string `yaml:"model,omitempty"`
	LogLevel   string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Alphabet:   DefaultAlphabet,
		Boundary:   string(corpus.DefaultBoundary),
		Seed:       0,
		Iterations: search.DefaultIterations,
		LogLevel:   "warn",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Alphabet == "" {
		return fmt.Errorf("%w: alphabet is empty", ErrInvalidConfig)
	}
	seen := make(map[rune]bool, len(c.Alphabet))
	for _, r := range c.Alphabet {
		if seen[r] {
			return fmt.Errorf("%w: alphabet repeats %q", ErrInvalidConfig, r)
		}
		seen[r] = true
	}
	if utf8.RuneCountInString(c.Boundary) != 1 {
		return fmt.Errorf("%w: boundary must be exactly one symbol, got %q", ErrInvalidConfig, c.Boundary)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidConfig, c.Iterations)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// BoundaryRune returns the boundary symbol. Call after Validate.
func (c Config) BoundaryRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Boundary)
	return r
}

// ParseLevel maps a log_level name (debug, info, warn, error) to a slog level.
// The empty string means warn.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, name)
	}
	return level, nil
}
