package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	xglog "github.com/ManuGH/yt2g/internal/log"
	"github.com/ManuGH/yt2g/internal/metrics"
	"github.com/ManuGH/yt2g/internal/resolve"
	"github.com/ManuGH/yt2g/internal/telemetry"
	"github.com/ManuGH/yt2g/internal/uaprofile"
	"github.com/ManuGH/yt2g/internal/ytid"
)

// dashLeg is one stream of a paired answer.
type dashLeg struct {
	URL    string `json:"url"`
	Codecs string `json:"codecs"`
}

// dashPayload mirrors the wire shape consumed by the player frontend:
// {dash:{videos:{"<height>":{url,codecs}},audio:{url,codecs}}}.
type dashPayload struct {
	Videos map[string]dashLeg `json:"videos"`
	Audio  dashLeg            `json:"audio"`
}

type dashResponse struct {
	Dash dashPayload `json:"dash"`
}

// metaResponse is the structured answer of /api/streammeta.
type metaResponse struct {
	Type string       `json:"type"`
	URL  string       `json:"url,omitempty"`
	Dash *dashPayload `json:"dash,omitempty"`
}

// handleStreamURL answers with a redirect to a single playable URL or with a
// DASH pairing descriptor. The identifier is validated before anything else
// runs; no upstream call is spent on malformed input.
func (s *Server) handleStreamURL(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if !ytid.Valid(videoID) {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}

	res, ok := s.resolveRequest(w, r, videoID)
	if !ok {
		return
	}

	switch res.Kind {
	case resolve.KindSingleStream:
		http.Redirect(w, r, res.URL, http.StatusFound)
	case resolve.KindPairedStream:
		writeJSON(w, http.StatusOK, dashResponse{Dash: dashFrom(res)})
	default:
		streamError(w)
	}
}

// handleStreamMeta runs the same pipeline but always answers with JSON, for
// script-side failover players that cannot follow redirects.
func (s *Server) handleStreamMeta(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if !ytid.Valid(videoID) {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}

	res, ok := s.resolveRequest(w, r, videoID)
	if !ok {
		return
	}

	switch res.Kind {
	case resolve.KindSingleStream:
		writeJSON(w, http.StatusOK, metaResponse{Type: "m3u8", URL: res.URL})
	case resolve.KindPairedStream:
		dash := dashFrom(res)
		writeJSON(w, http.StatusOK, metaResponse{Type: "dash", Dash: &dash})
	default:
		streamError(w)
	}
}

// resolveRequest fetches the catalog, classifies the client, and runs the
// resolver. On upstream failure it writes the error response and returns
// ok=false; an Unresolvable result is returned to the caller untouched so
// both handlers share one failure shape.
func (s *Server) resolveRequest(w http.ResponseWriter, r *http.Request, videoID string) (resolve.Result, bool) {
	ctx := r.Context()
	logger := xglog.WithComponentFromContext(ctx, "api")

	catalog, err := s.fetcher.Catalog(ctx, videoID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "stream.catalog_failed").
			Str("video_id", videoID).
			Msg("catalog fetch failed")
		streamError(w)
		return resolve.Result{}, false
	}

	profile := uaprofile.Classify(r.UserAgent())
	res := resolve.Resolve(resolve.Input{Formats: catalog, Constrained: profile.Constrained})
	metrics.RecordResolution(string(res.Kind), string(res.Tier), string(res.Reason))

	trace.SpanFromContext(ctx).SetAttributes(
		telemetry.StreamAttributes(videoID, string(res.Tier), string(res.Kind))...,
	)

	if res.Kind == resolve.KindUnresolvable {
		logger.Error().
			Str("event", "stream.unresolvable").
			Str("video_id", videoID).
			Str("reason", string(res.Reason)).
			Bool("constrained", profile.Constrained).
			Int("catalog_size", len(catalog)).
			Msg("no viable format")
	} else {
		logger.Info().
			Str("event", "stream.resolved").
			Str("video_id", videoID).
			Str("tier", string(res.Tier)).
			Str("kind", string(res.Kind)).
			Msg("stream resolved")
	}

	return res, true
}

func dashFrom(res resolve.Result) dashPayload {
	return dashPayload{
		Videos: map[string]dashLeg{
			strconv.Itoa(res.Video.Height): {URL: res.Video.URL, Codecs: res.Video.Codecs},
		},
		Audio: dashLeg{URL: res.Audio.URL, Codecs: res.Audio.Codecs},
	}
}

// streamError is the uniform terminal failure answer: opaque on the wire,
// detail stays in the logs.
func streamError(w http.ResponseWriter) {
	http.Error(w, "stream error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
