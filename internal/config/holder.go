package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/yt2g/internal/log"
)

// Holder holds configuration with atomic reloading. Reads are cheap and
// lock-scoped; a reload either fully validates and swaps the config or
// leaves the previous one untouched.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
}

// NewHolder wraps an already-validated configuration.
func NewHolder(initial AppConfig) *Holder {
	return &Holder{
		current: initial,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Mirrors returns a snapshot of the current mirror pool. Implements
// invidious.MirrorSource.
func (h *Holder) Mirrors() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.current.Mirrors))
	copy(out, h.current.Mirrors)
	return out
}

// Reload re-reads the mirror file and swaps the pool atomically. Only the
// mirror pool is reloadable at runtime; everything else requires a restart.
func (h *Holder) Reload(context.Context) error {
	h.mu.RLock()
	path := h.current.MirrorFile
	h.mu.RUnlock()

	if path == "" {
		return nil
	}

	mirrors, err := LoadMirrorFile(path)
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("keeping previous mirror pool")
		return fmt.Errorf("reload mirrors: %w", err)
	}

	candidate := h.Get()
	candidate.Mirrors = mirrors
	if err := Validate(candidate); err != nil {
		h.logger.Error().Err(err).Str("event", "config.validation_failed").Msg("keeping previous mirror pool")
		return fmt.Errorf("validate mirrors: %w", err)
	}

	h.mu.Lock()
	h.current = candidate
	h.mu.Unlock()

	h.logger.Info().
		Str("event", "config.reload_success").
		Int("mirrors", len(mirrors)).
		Msg("mirror pool reloaded")
	return nil
}

// StartWatcher watches the mirror file for changes until ctx is done. A
// missing file path disables watching (ENV-only configuration).
func (h *Holder) StartWatcher(ctx context.Context) error {
	path := h.Get().MirrorFile
	if path == "" {
		h.logger.Info().Str("event", "config.watcher_disabled").Msg("no mirrors file, watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch mirrors file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", path).
		Msg("watching mirrors file for changes")

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce rapid write sequences from editors into one reload.
	const debounce = 500 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().Err(err).Str("event", "config.auto_reload_failed").Msg("automatic reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}
