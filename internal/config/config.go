// Package config reads the simulator settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config for the formflow tools. Every field can be set from the environment.
type Config struct {
	// LogLevel is one of debug, info, warn or error. ENV: FORMFLOW_LOG_LEVEL
	LogLevel string `env:"FORMFLOW_LOG_LEVEL,default=info"`
	// LogFormat is text or json. ENV: FORMFLOW_LOG_FORMAT
	LogFormat string `env:"FORMFLOW_LOG_FORMAT,default=text"`
	// Definitions is the directory holding *.form.yaml files. ENV: FORMFLOW_DEFINITIONS
	Definitions string `env:"FORMFLOW_DEFINITIONS,default=forms"`
	// PoolSize bounds the number of compiled forms kept in memory. ENV: FORMFLOW_POOL_SIZE
	PoolSize int `env:"FORMFLOW_POOL_SIZE,default=16"`
	// LazyPlans defers plan building to the first fire. ENV: FORMFLOW_LAZY_PLANS
	LazyPlans bool `env:"FORMFLOW_LAZY_PLANS,default=false"`
	// SanitizedOptions lists UI options whose strings are HTML sanitised,
	// separated by semicolons. ENV: FORMFLOW_SANITIZED_OPTIONS
	SanitizedOptions []string `env:"FORMFLOW_SANITIZED_OPTIONS"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Definitions: "forms",
		PoolSize:    16,
	}
}

// Load decodes the environment over the defaults and validates the result.
func Load() (Config, error) {
	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.LogFormat))
	}
	if strings.TrimSpace(c.Definitions) == "" {
		errs = append(errs, errors.New("config: definitions directory is empty"))
	}
	if c.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("config: pool size must be positive, got %d", c.PoolSize))
	}
	return errors.Join(errs...)
}

// Logger builds the slog logger described by the configuration.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", raw)
	}
	return level, nil
}
