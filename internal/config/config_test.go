package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		ListenAddr:      ":8080",
		Mirrors:         []string{"https://iv.example"},
		UpstreamTimeout: 10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("YT2G_LISTEN", "127.0.0.1:9090")
	t.Setenv("YT2G_MIRRORS", "https://a.example/, https://b.example")
	t.Setenv("YT2G_UPSTREAM_TIMEOUT", "3s")

	cfg := FromEnv()
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Mirrors)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("YT2G_UPSTREAM_TIMEOUT", "soon")
	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"empty listen", func(c *AppConfig) { c.ListenAddr = " " }, true},
		{"no mirrors", func(c *AppConfig) { c.Mirrors = nil }, true},
		{"mirror without scheme", func(c *AppConfig) { c.Mirrors = []string{"iv.example"} }, true},
		{"mirror with bad scheme", func(c *AppConfig) { c.Mirrors = []string{"ftp://iv.example"} }, true},
		{"zero upstream timeout", func(c *AppConfig) { c.UpstreamTimeout = 0 }, true},
		{"zero shutdown timeout", func(c *AppConfig) { c.ShutdownTimeout = 0 }, true},
		{"bad tracing exporter", func(c *AppConfig) {
			c.Tracing = TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}
		}, true},
		{"tracing sampling out of range", func(c *AppConfig) {
			c.Tracing = TracingConfig{Enabled: true, Exporter: "http", SamplingRate: 2}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func writeMirrorFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirrors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMirrorFile(t *testing.T) {
	t.Parallel()

	path := writeMirrorFile(t, "mirrors:\n  - https://a.example\n  - https://b.example\n")
	mirrors, err := LoadMirrorFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, mirrors)
}

func TestLoadMirrorFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadMirrorFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		_, err := LoadMirrorFile(writeMirrorFile(t, "mirrors: []\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := LoadMirrorFile(writeMirrorFile(t, "mirrors: ["))
		assert.Error(t, err)
	})
}

func TestResolvePrefersFileOverEnv(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.MirrorFile = writeMirrorFile(t, "mirrors:\n  - https://file.example\n")

	resolved, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://file.example"}, resolved.Mirrors)
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Mirrors = nil

	resolved, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultMirrors, resolved.Mirrors)
}

func TestHolderReloadSwapsMirrors(t *testing.T) {
	t.Parallel()

	path := writeMirrorFile(t, "mirrors:\n  - https://old.example\n")
	cfg := validConfig()
	cfg.MirrorFile = path
	cfg.Mirrors = []string{"https://old.example"}

	holder := NewHolder(cfg)
	require.NoError(t, os.WriteFile(path, []byte("mirrors:\n  - https://new.example\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))
	assert.Equal(t, []string{"https://new.example"}, holder.Mirrors())
}

func TestHolderReloadKeepsPoolOnBadFile(t *testing.T) {
	t.Parallel()

	path := writeMirrorFile(t, "mirrors:\n  - https://old.example\n")
	cfg := validConfig()
	cfg.MirrorFile = path
	cfg.Mirrors = []string{"https://old.example"}

	holder := NewHolder(cfg)
	require.NoError(t, os.WriteFile(path, []byte("mirrors: []\n"), 0o600))
	require.Error(t, holder.Reload(context.Background()))
	assert.Equal(t, []string{"https://old.example"}, holder.Mirrors())
}

func TestHolderWatcherReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := writeMirrorFile(t, "mirrors:\n  - https://old.example\n")
	cfg := validConfig()
	cfg.MirrorFile = path
	cfg.Mirrors = []string{"https://old.example"}

	holder := NewHolder(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("mirrors:\n  - https://new.example\n"), 0o600))

	require.Eventually(t, func() bool {
		m := holder.Mirrors()
		return len(m) == 1 && m[0] == "https://new.example"
	}, 5*time.Second, 50*time.Millisecond)
}
