// Package config loads quester settings from a YAML file with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. QUESTER_DATABASE.
const EnvPrefix = "QUESTER_"

// Config is the runtime configuration. YAML values are read first and
// QUESTER_ environment variables override them.
type Config struct {
	QuestsDir           string        `yaml:"quests_dir" env:"QUESTS_DIR"`
	Database            string        `yaml:"database" env:"DATABASE"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL"`
	TickInterval        time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	SweepEveryTicks     int           `yaml:"sweep_every_ticks" env:"SWEEP_EVERY_TICKS"`
	OrphanLogEveryTicks int           `yaml:"orphan_log_every_ticks" env:"ORPHAN_LOG_EVERY_TICKS"`
	MaxActionDepth      int           `yaml:"max_action_depth" env:"MAX_ACTION_DEPTH"`
	// RewardSeed seeds reward and roll randomness; 0 seeds from the clock.
	RewardSeed       uint64   `yaml:"reward_seed" env:"REWARD_SEED"`
	NotifyErrors     bool     `yaml:"notify_errors" env:"NOTIFY_ERRORS"`
	LegacyNamespaces []string `yaml:"legacy_namespaces" env:"LEGACY_NAMESPACES" envSeparator:","`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		QuestsDir:           "quests",
		Database:            "quester.db",
		LogLevel:            "info",
		TickInterval:        time.Second,
		SweepEveryTicks:     1,
		OrphanLogEveryTicks: 60,
		MaxActionDepth:      16,
		NotifyErrors:        true,
		LegacyNamespaces:    []string{"vsquest"},
	}
}

// Load reads path (skipped when empty) over the defaults, applies
// QUESTER_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// LoadWithEnv is Load with an explicit environment instead of the process
// one.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(path, environ)
}

func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings the driver cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.SweepEveryTicks <= 0 {
		errs = append(errs, fmt.Errorf("sweep_every_ticks must be positive, got %d", c.SweepEveryTicks))
	}
	if c.OrphanLogEveryTicks <= 0 {
		errs = append(errs, fmt.Errorf("orphan_log_every_ticks must be positive, got %d", c.OrphanLogEveryTicks))
	}
	if c.MaxActionDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_action_depth must be positive, got %d", c.MaxActionDepth))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
