// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the calculator API.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	SessionMax           int
	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration

	// TelemetryDisabled skips the OTLP trace, metric and log exporters.
	TelemetryDisabled bool
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		ShutdownTimeout:      5 * time.Second,
		SessionMax:           10000,
		SessionIdleTTL:       30 * time.Minute,
		SessionSweepInterval: time.Minute,
	}
}

// Load builds a Config from the process environment on top of Default.
func Load() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("HTTP_ADDR"); ok && v != "" {
		cfg.HTTPAddr = v
	}

	var err error
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionMax, err = intEnv("SESSION_MAX", cfg.SessionMax); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = durationEnv("SESSION_IDLE_TTL", cfg.SessionIdleTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionSweepInterval, err = durationEnv("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.TelemetryDisabled, err = boolEnv("OTEL_SDK_DISABLED", cfg.TelemetryDisabled); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", key, v)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse %s: negative value %d", key, n)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
