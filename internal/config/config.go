// Package config provides centralized configuration for the simulator.
//
// Values come from the defaults, then an optional INI file named by
// GITSIM_CONFIG, then GITSIM_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	"github.com/kurobon/explaingit/internal/model"
)

// Environment variables read by Load.
const (
	EnvConfigFile     = "GITSIM_CONFIG"
	EnvAddr           = "GITSIM_ADDR"
	EnvScenarioDir    = "GITSIM_SCENARIO_DIR"
	EnvWatchScenarios = "GITSIM_WATCH_SCENARIOS"
	EnvLogLevel       = "GITSIM_LOG_LEVEL"
	EnvPullDelay      = "GITSIM_PULL_DELAY"
)

// Config holds application-wide configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// ScenarioDir holds extra scenario YAML files. Empty means built-in
	// scenarios only.
	ScenarioDir    string
	WatchScenarios bool
	LogLevel       string
	// PullDelay pauses pull between its fetch and integrate steps.
	PullDelay  time.Duration
	RemoteName string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		LogLevel:   "info",
		RemoteName: "origin",
	}
}

// Load builds the configuration from defaults, the INI file named by
// GITSIM_CONFIG (if any) and the environment.
func Load() (*Config, error) {
	c := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays the values present in an INI file:
//
//	[server]
//	addr = :8080
//	log_level = debug
//
//	[scenarios]
//	dir = ./scenarios
//	watch = true
//
//	[sync]
//	pull_delay = 800ms
//	remote = origin
func (c *Config) LoadFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	server := f.Section("server")
	c.Addr = server.Key("addr").MustString(c.Addr)
	c.LogLevel = server.Key("log_level").MustString(c.LogLevel)

	scenarios := f.Section("scenarios")
	c.ScenarioDir = scenarios.Key("dir").MustString(c.ScenarioDir)
	if scenarios.HasKey("watch") {
		watch, err := scenarios.Key("watch").Bool()
		if err != nil {
			return fmt.Errorf("config %s: scenarios.watch: %w", path, err)
		}
		c.WatchScenarios = watch
	}

	sync := f.Section("sync")
	if sync.HasKey("pull_delay") {
		d, err := sync.Key("pull_delay").Duration()
		if err != nil {
			return fmt.Errorf("config %s: sync.pull_delay: %w", path, err)
		}
		c.PullDelay = d
	}
	c.RemoteName = sync.Key("remote").MustString(c.RemoteName)
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvScenarioDir); v != "" {
		c.ScenarioDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWatchScenarios); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWatchScenarios, err)
		}
		c.WatchScenarios = watch
	}
	if v := os.Getenv(EnvPullDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPullDelay, err)
		}
		c.PullDelay = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: empty listen address")
	}
	if c.PullDelay < 0 {
		return fmt.Errorf("config: negative pull delay %s", c.PullDelay)
	}
	if err := model.ValidateName(c.RemoteName); err != nil || strings.Contains(c.RemoteName, "/") {
		return fmt.Errorf("config: invalid remote name %q", c.RemoteName)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.WatchScenarios && c.ScenarioDir == "" {
		return fmt.Errorf("config: watching scenarios needs a scenario directory")
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
