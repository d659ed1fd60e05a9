// Package config loads engine configuration from YAML or TOML files.
//
// A configuration file looks like this (YAML):
//
//	capacity: 1024
//	stack_size: 65536
//	stack_limit: 0
//	backend: coro
//	log_level: warn
//
// Keys that are left out keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/b97tsk/coro"
)

// Config describes how to build a coroutine engine.
type Config struct {
	// Capacity is the maximum number of live coroutines.
	// Zero or less means no ceiling.
	Capacity int `yaml:"capacity" toml:"capacity"`

	// StackSize is the size in bytes of each stackful coroutine's stack.
	StackSize int `yaml:"stack_size" toml:"stack_size"`

	// StackLimit caps the bytes of stack handed out at any time.
	// Zero or less means no limit.
	StackLimit int64 `yaml:"stack_limit" toml:"stack_limit"`

	// Backend is "coro" or "goroutine".
	Backend string `yaml:"backend" toml:"backend"`

	// LogLevel is "debug", "info", "warn", "error" or "off".
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// Format is the syntax of a configuration file.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Default returns the configuration engines use when nothing is configured.
func Default() Config {
	return Config{
		Capacity:  coro.DefaultCapacity,
		StackSize: coro.DefaultStackSize,
		Backend:   coro.CoroBackend.String(),
		LogLevel:  "off",
	}
}

// Load reads the configuration file at path. The format is picked by
// extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (Config, error) {
	var format Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		format = YAML
	case ".toml":
		format = TOML
	default:
		return Config{}, fmt.Errorf("config: unsupported file extension %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data on top of [Default] and validates the result.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config: unknown format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if c.StackSize <= 0 {
		return fmt.Errorf("config: stack_size must be positive, got %d", c.StackSize)
	}
	if c.StackLimit > 0 && c.StackLimit < int64(c.StackSize) {
		return fmt.Errorf("config: stack_limit %d is smaller than stack_size %d", c.StackLimit, c.StackSize)
	}
	if _, err := c.backend(); err != nil {
		return err
	}
	if _, _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) backend() (coro.Backend, error) {
	switch strings.ToLower(c.Backend) {
	case "", "coro":
		return coro.CoroBackend, nil
	case "goroutine":
		return coro.GoroutineBackend, nil
	}
	return 0, fmt.Errorf("config: unknown backend %q", c.Backend)
}

func (c Config) level() (slog.Level, bool, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "off":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	}
	return 0, false, fmt.Errorf("config: unknown log_level %q", c.LogLevel)
}

// Options turns c into engine options. Log records, if enabled, are written
// to w as text.
func (c Config) Options(w io.Writer) ([]coro.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	backend, _ := c.backend()
	opts := []coro.Option{
		coro.WithCapacity(c.Capacity),
		coro.WithStackSize(c.StackSize),
		coro.WithBackend(backend),
	}
	if c.StackLimit > 0 {
		opts = append(opts, coro.WithStackAllocator(coro.NewStackArena(c.StackLimit)))
	}
	if level, on, _ := c.level(); on && w != nil {
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		opts = append(opts, coro.WithLogger(slog.New(h)))
	}
	return opts, nil
}
