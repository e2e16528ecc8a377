package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"tss-backtest/internal/model"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Backtest BacktestConfig `yaml:"backtest"`
	Strategy StrategyConfig `yaml:"strategy"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// Env is "development" or "production". Production puts gin in release mode.
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type BacktestConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	// Seed 0 means a fresh random seed per run.
	Seed      uint64        `yaml:"seed"`
	ResultTTL time.Duration `yaml:"result_ttl"`
	// MaxDays bounds the series length a single request may ask for.
	MaxDays int `yaml:"max_days"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// Default returns a complete configuration usable without a file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Backtest: BacktestConfig{
			InitialCapital: 10000,
			ResultTTL:      time.Hour,
			MaxDays:        252 * 10,
		},
		Strategy: StrategyConfig{Name: string(model.StrategyMomentum)},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it or apply
// environment overrides.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Merge(c, &file), nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !(c.Backtest.InitialCapital > 0) {
		return errors.New("backtest.initial_capital must be > 0")
	}
	if c.Backtest.ResultTTL <= 0 {
		return errors.New("backtest.result_ttl must be > 0")
	}
	if c.Backtest.MaxDays < 2 {
		return errors.New("backtest.max_days must be >= 2")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if _, err := model.ParseStrategyID(c.Strategy.Name); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	return nil
}

// StrategyID returns the configured strategy. Call after Validate.
func (c *Config) StrategyID() model.StrategyID {
	id, _ := model.ParseStrategyID(c.Strategy.Name)
	return id
}

// StrategyParams returns the configured params when id is the configured
// strategy, and nil otherwise.
func (c *Config) StrategyParams(id model.StrategyID) map[string]any {
	if def, err := model.ParseStrategyID(c.Strategy.Name); err != nil || def != id {
		return nil
	}
	return c.Strategy.Params
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

// Merge overlays non-zero fields from override onto base.
func Merge(base, override *Config) *Config {
	out := *base
	if override.Server.Port != "" {
		out.Server.Port = override.Server.Port
	}
	if override.Server.Env != "" {
		out.Server.Env = override.Server.Env
	}
	if len(override.Server.AllowedOrigins) > 0 {
		out.Server.AllowedOrigins = override.Server.AllowedOrigins
	}
	if override.Logging.Level != "" {
		out.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		out.Logging.Format = override.Logging.Format
	}
	if override.Backtest.InitialCapital != 0 {
		out.Backtest.InitialCapital = override.Backtest.InitialCapital
	}
	if override.Backtest.Seed != 0 {
		out.Backtest.Seed = override.Backtest.Seed
	}
	if override.Backtest.ResultTTL != 0 {
		out.Backtest.ResultTTL = override.Backtest.ResultTTL
	}
	if override.Backtest.MaxDays != 0 {
		out.Backtest.MaxDays = override.Backtest.MaxDays
	}
	if override.Strategy.Name != "" {
		out.Strategy.Name = override.Strategy.Name
	}
	if override.Strategy.Params != nil {
		out.Strategy.Params = override.Strategy.Params
	}
	return &out
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("BACKTEST_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BACKTEST_SEED: %w", err)
		}
		c.Backtest.Seed = seed
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
