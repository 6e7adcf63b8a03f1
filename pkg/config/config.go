// Package config reads imgbench settings from the environment, optionally
// seeded from .env files.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/imgbench/pkg/engine"
)

// Environment keys.
const (
	EnvWorkers    = "IMGBENCH_WORKERS"
	EnvNoiseSeed  = "IMGBENCH_NOISE_SEED"
	EnvMaxPixels  = "IMGBENCH_MAX_PIXELS"
	EnvLogLevel   = "IMGBENCH_LOG_LEVEL"
	EnvLogFormat  = "IMGBENCH_LOG_FORMAT"
	EnvUpdateRepo = "IMGBENCH_UPDATE_REPO"
)

// DefaultUpdateRepo is the GitHub repository checked for new releases.
const DefaultUpdateRepo = "Fepozopo/imgbench"

// Config holds the resolved settings.
type Config struct {
	Workers    int
	NoiseSeed  int64
	MaxPixels  int
	LogLevel   slog.Level
	LogFormat  string
	UpdateRepo string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Workers:    runtime.GOMAXPROCS(0),
		MaxPixels:  engine.DefaultMaxPixels,
		LogLevel:   slog.LevelWarn,
		LogFormat:  "text",
		UpdateRepo: DefaultUpdateRepo,
	}
}

// Load reads the given .env files (".env" if none are named) into the
// process environment and then parses the settings. Missing files are
// ignored and variables already set in the environment take precedence.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses the settings through lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", EnvWorkers, v)
		}
		cfg.Workers = n
	}
	if v, ok := get(EnvNoiseSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: want an integer, got %q", EnvNoiseSeed, v)
		}
		cfg.NoiseSeed = n
	}
	if v, ok := get(EnvMaxPixels); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", EnvMaxPixels, v)
		}
		cfg.MaxPixels = n
	}
	if v, ok := get(EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := get(EnvLogFormat); ok {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("%s: want text or json, got %q", EnvLogFormat, v)
		}
		cfg.LogFormat = v
	}
	if v, ok := get(EnvUpdateRepo); ok {
		if strings.Count(v, "/") != 1 || strings.HasPrefix(v, "/") || strings.HasSuffix(v, "/") {
			return Config{}, fmt.Errorf("%s: want owner/name, got %q", EnvUpdateRepo, v)
		}
		cfg.UpdateRepo = v
	}
	return cfg, nil
}

// Logger builds a slog.Logger writing to w in the configured format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// EngineOptions converts the settings into engine options.
func (c Config) EngineOptions(logger *slog.Logger) engine.Options {
	return engine.Options{
		Workers:   c.Workers,
		Logger:    logger,
		NoiseSeed: c.NoiseSeed,
		MaxPixels: c.MaxPixels,
	}
}
