package invidious

import (
	"math/rand/v2"
	"net/url"
	"strings"
)

// MirrorSource supplies the current list of Invidious-compatible base URLs.
// Implementations must return a snapshot safe for the caller to read; the
// config layer swaps the backing list atomically on reload.
type MirrorSource interface {
	Mirrors() []string
}

// StaticMirrors is a fixed MirrorSource, mainly for tests and one-shot use.
type StaticMirrors []string

// Mirrors implements MirrorSource.
func (m StaticMirrors) Mirrors() []string {
	return m
}

// pickMirror selects one mirror uniformly at random. The pool is flat: no
// health scoring, no stickiness, a fresh pick per fetch.
func pickMirror(mirrors []string) (string, bool) {
	if len(mirrors) == 0 {
		return "", false
	}
	return strings.TrimRight(mirrors[rand.IntN(len(mirrors))], "/"), true
}

// hostLabel reduces a mirror base URL to its host for metric labels.
func hostLabel(mirror string) string {
	u, err := url.Parse(mirror)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
