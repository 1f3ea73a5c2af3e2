// Package invidious fetches video format catalogs from a pool of
// Invidious-compatible API mirrors.
package invidious

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/yt2g/internal/hls"
	"github.com/ManuGH/yt2g/internal/telemetry"
	xglog "github.com/ManuGH/yt2g/internal/log"
	"github.com/ManuGH/yt2g/internal/metrics"
	"github.com/ManuGH/yt2g/internal/resolve"
)

const defaultTimeout = 10 * time.Second

// browserUserAgents rotate on upstream requests so a single static UA does
// not stand out in mirror logs.
var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	"Mozilla/5.0 (X11; Linux x86_64)",
}

// Client talks to the Invidious video API.
type Client struct {
	src  MirrorSource
	http *http.Client
}

// New creates a client over the given mirror source. A non-positive timeout
// falls back to the default.
func New(src MirrorSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		src:  src,
		http: &http.Client{Timeout: timeout},
	}
}

// Catalog fetches the format catalog for one validated video identifier.
// One mirror is picked uniformly at random per call; there is no retry
// against other mirrors, a failed fetch surfaces to the caller.
func (c *Client) Catalog(ctx context.Context, videoID string) ([]resolve.Format, error) {
	mirror, ok := pickMirror(c.src.Mirrors())
	if !ok {
		return nil, &APIError{Sentinel: ErrNoMirrors, Operation: "catalog"}
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(telemetry.StreamMirrorKey, hostLabel(mirror)),
	)

	start := time.Now()
	payload, err := c.fetchVideo(ctx, mirror, videoID)
	metrics.RecordUpstreamRequest(hostLabel(mirror), outcomeLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	catalog := buildCatalog(payload)

	// A master playlist URL expands into one catalog entry per variant.
	// Expansion failure is not fatal: the progressive and adaptive formats
	// already decoded still feed the resolver, matching how the upstream
	// behaves when HLS is briefly unavailable.
	if payload.HLSUrl != "" {
		variants, err := c.fetchMaster(ctx, payload.HLSUrl)
		if err != nil {
			logger := xglog.WithComponentFromContext(ctx, "invidious")
			logger.Warn().
				Err(err).
				Str("video_id", videoID).
				Str("event", "upstream.hls_expand_failed").
				Msg("master playlist expansion failed, continuing without HLS formats")
		} else {
			catalog = append(catalog, hlsFormats(variants)...)
		}
	}

	if len(catalog) == 0 {
		return nil, &APIError{Sentinel: ErrNoFormats, Operation: "catalog", Mirror: mirror}
	}
	return catalog, nil
}

func (c *Client) fetchVideo(ctx context.Context, mirror, videoID string) (*videoPayload, error) {
	endpoint := mirror + "/api/v1/videos/" + url.PathEscape(videoID) + "?local=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamUnavailable, Operation: "videos", Mirror: mirror, Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgents[rand.IntN(len(browserUserAgents))])
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.youtube.com/")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, transportError("videos", mirror, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, &APIError{Sentinel: ErrNotFound, Operation: "videos", Mirror: mirror, Status: res.StatusCode}
	case res.StatusCode >= 500:
		return nil, &APIError{Sentinel: ErrUpstreamError, Operation: "videos", Mirror: mirror, Status: res.StatusCode}
	case res.StatusCode != http.StatusOK:
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: "videos", Mirror: mirror, Status: res.StatusCode}
	}

	var payload videoPayload
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: "videos", Mirror: mirror, Err: err}
	}
	return &payload, nil
}

// maxResponseBytes bounds upstream response decoding (format catalogs are a
// few hundred KB at most).
const maxResponseBytes = 8 * 1024 * 1024

func (c *Client) fetchMaster(ctx context.Context, masterURL string) ([]hls.Variant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, masterURL, nil)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamUnavailable, Operation: "master_playlist", Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgents[rand.IntN(len(browserUserAgents))])

	res, err := c.http.Do(req)
	if err != nil {
		return nil, transportError("master_playlist", "", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: "master_playlist", Status: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError("master_playlist", "", err)
	}

	variants, err := hls.ParseMaster(string(body), masterURL)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: "master_playlist", Err: err}
	}
	return variants, nil
}

func transportError(op, mirror string, err error) error {
	sentinel := ErrUpstreamUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		sentinel = ErrTimeout
	}
	return &APIError{Sentinel: sentinel, Operation: op, Mirror: mirror, Err: err}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamError):
		return "upstream_error"
	case errors.Is(err, ErrUpstreamBadResponse):
		return "bad_response"
	default:
		return "unreachable"
	}
}
