// Package config loads and validates the daemon configuration with the
// precedence ENV > mirrors file > defaults.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultMirrors seed the pool when neither environment nor file supply one.
var DefaultMirrors = []string{
	"https://inv.nadeko.net",
	"https://invidious.f5.si",
	"https://invidious.nerdvpn.de",
	"https://iv.duti.dev",
	"https://yewtu.be",
}

// AppConfig is the full daemon configuration.
type AppConfig struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string

	LogLevel   string
	LogService string

	// Mirrors is the Invidious mirror pool. One is picked uniformly at
	// random per upstream fetch.
	Mirrors []string

	// MirrorFile optionally points at a YAML file overriding Mirrors; the
	// file is watched for changes at runtime.
	MirrorFile string

	// UpstreamTimeout bounds one metadata fetch including body decode.
	UpstreamTimeout time.Duration

	// ShutdownTimeout bounds the HTTP server drain on termination.
	ShutdownTimeout time.Duration

	Tracing TracingConfig
}

// TracingConfig configures the optional OTLP trace exporter.
type TracingConfig struct {
	Enabled      bool
	Exporter     string // "grpc" or "http"
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// FromEnv builds the configuration from environment variables and defaults.
func FromEnv() AppConfig {
	return AppConfig{
		ListenAddr:      ParseString("YT2G_LISTEN", ":8080"),
		LogLevel:        ParseString("YT2G_LOG_LEVEL", "info"),
		LogService:      ParseString("YT2G_LOG_SERVICE", "yt2g"),
		Mirrors:         splitMirrors(ParseString("YT2G_MIRRORS", "")),
		MirrorFile:      ParseString("YT2G_MIRRORS_FILE", ""),
		UpstreamTimeout: ParseDuration("YT2G_UPSTREAM_TIMEOUT", 10*time.Second),
		ShutdownTimeout: ParseDuration("YT2G_SHUTDOWN_TIMEOUT", 15*time.Second),
		Tracing: TracingConfig{
			Enabled:      ParseBool("YT2G_TRACING_ENABLED", false),
			Exporter:     ParseString("YT2G_TRACING_EXPORTER", "http"),
			Endpoint:     ParseString("YT2G_TRACING_ENDPOINT", "localhost:4318"),
			SamplingRate: ParseFloat("YT2G_TRACING_SAMPLING_RATE", 0.1),
			Environment:  ParseString("YT2G_ENVIRONMENT", "development"),
		},
	}
}

// Validate rejects configurations the daemon cannot run with.
func Validate(cfg AppConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if len(cfg.Mirrors) == 0 {
		return fmt.Errorf("config: at least one mirror is required")
	}
	for _, m := range cfg.Mirrors {
		u, err := url.Parse(m)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: invalid mirror URL %q", m)
		}
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("config: upstream timeout must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive")
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "grpc" && cfg.Tracing.Exporter != "http" {
			return fmt.Errorf("config: unsupported tracing exporter %q", cfg.Tracing.Exporter)
		}
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			return fmt.Errorf("config: tracing sampling rate must be within [0,1]")
		}
	}
	return nil
}

func splitMirrors(csv string) []string {
	var mirrors []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			mirrors = append(mirrors, strings.TrimRight(p, "/"))
		}
	}
	return mirrors
}
