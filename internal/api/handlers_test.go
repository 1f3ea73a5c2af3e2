package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/yt2g/internal/config"
	"github.com/ManuGH/yt2g/internal/invidious"
)

const testVideoID = "dQw4w9WgXcQ"

const hlsOnlyFixture = `{
	"adaptiveFormats": [
		{"url": "https://cdn/audio128", "itag": "140", "type": "audio/mp4; codecs=\"mp4a.40.2\"", "container": "m4a", "bitrate": "128000"}
	],
	"hlsUrl": %MASTER%
}`

const dashOnlyFixture = `{
	"formatStreams": [
		{"url": "https://cdn/progressive360", "itag": "18", "type": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "container": "mp4", "resolution": "360p"}
	],
	"adaptiveFormats": [
		{"url": "https://cdn/video720", "itag": "136", "type": "video/mp4; codecs=\"avc1.4d401f\"", "container": "mp4", "qualityLabel": "720p", "bitrate": "1500000"},
		{"url": "https://cdn/audio128", "itag": "140", "type": "audio/mp4; codecs=\"mp4a.40.2\"", "container": "m4a", "bitrate": "128000"}
	]
}`

const sampleMaster = "#EXTM3U\n" +
	"#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,CODECS=\"avc1.640028,mp4a.40.2\"\n" +
	"1080.m3u8\n" +
	"#EXT-X-STREAM-INF:BANDWIDTH=1500000,RESOLUTION=1280x720,CODECS=\"avc1.4d401f,mp4a.40.2\"\n" +
	"720.m3u8\n"

func newTestServer(t *testing.T) (*invidious.MockServer, http.Handler) {
	t.Helper()

	mock := invidious.NewMockServer()
	t.Cleanup(mock.Close)

	holder := config.NewHolder(config.AppConfig{
		ListenAddr:      ":0",
		LogService:      "yt2g-test",
		Mirrors:         []string{mock.URL},
		UpstreamTimeout: 5 * time.Second,
		ShutdownTimeout: time.Second,
	})
	client := invidious.New(holder, 5*time.Second)
	return mock, New(holder, client).Handler()
}

func setHLSFixture(mock *invidious.MockServer) {
	mock.SetMaster(sampleMaster)
	quoted, _ := json.Marshal(mock.MasterURL())
	mock.SetVideoJSON(testVideoID, strings.Replace(hlsOnlyFixture, "%MASTER%", string(quoted), 1))
}

func TestStreamURLInvalidIdentifierShortCircuits(t *testing.T) {
	t.Parallel()

	mock, handler := newTestServer(t)

	for _, id := range []string{"", "short", "dQw4w9WgXcQQ", "bad/slash!!"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+id, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}

	// Malformed identifiers must never cost an upstream call.
	assert.Zero(t, mock.Hits("/api/v1/videos/"))
}

func TestStreamURLRedirectsToBestHLS(t *testing.T) {
	t.Parallel()

	mock, handler := newTestServer(t)
	setHLSFixture(mock)

	for _, ua := range []string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+testVideoID, nil)
		req.Header.Set("User-Agent", ua)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code, ua)
		assert.Contains(t, rec.Header().Get("Location"), "1080.m3u8", ua)
	}
}

func TestStreamURLAnswersDashPairing(t *testing.T) {
	t.Parallel()

	mock, handler := newTestServer(t)
	mock.SetVideoJSON(testVideoID, dashOnlyFixture)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+testVideoID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body dashResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// The video key is the numeric height without the unit suffix.
	video, ok := body.Dash.Videos["720"]
	require.True(t, ok, "expected video key \"720\", got %v", body.Dash.Videos)
	assert.Equal(t, "https://cdn/video720", video.URL)
	assert.Equal(t, "avc1.4d401f", video.Codecs)
	assert.Equal(t, "https://cdn/audio128", body.Dash.Audio.URL)
	assert.Equal(t, "mp4a.40.2", body.Dash.Audio.Codecs)
}

func TestStreamURLUpstreamFailureIsOpaque500(t *testing.T) {
	t.Parallel()

	mock, handler := newTestServer(t)
	mock.FailWith(http.StatusBadGateway)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+testVideoID, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "stream error\n", rec.Body.String())
}

func TestStreamURLUnknownVideoIs500(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+testVideoID, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "stream error\n", rec.Body.String())
}

func TestStreamURLNoViableFormatIs500(t *testing.T) {
	t.Parallel()

	mock, handler := newTestServer(t)
	// Combined progressive only: no tier accepts it.
	mock.SetVideoJSON(testVideoID, `{
		"formatStreams": [
			{"url": "https://cdn/progressive360", "itag": "18", "type": "video/mp4; codecs=\"avc1, mp4a\"", "container": "mp4", "resolution": "360p"}
		]
	}`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streamurl?video_id="+testVideoID, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "stream error\n", rec.Body.String())
}

func TestStreamMetaShapes(t *testing.T) {
	t.Parallel()

	t.Run("hls answer", func(t *testing.T) {
		t.Parallel()
		mock, handler := newTestServer(t)
		setHLSFixture(mock)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streammeta?video_id="+testVideoID, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body metaResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "m3u8", body.Type)
		assert.Contains(t, body.URL, "1080.m3u8")
		assert.Nil(t, body.Dash)
	})

	t.Run("dash answer", func(t *testing.T) {
		t.Parallel()
		mock, handler := newTestServer(t)
		mock.SetVideoJSON(testVideoID, dashOnlyFixture)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streammeta?video_id="+testVideoID, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body metaResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "dash", body.Type)
		require.NotNil(t, body.Dash)
		assert.Contains(t, body.Dash.Videos, "720")
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		_, handler := newTestServer(t)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/streammeta?video_id=nope", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResponseCarriesRequestIDAndSecurityHeaders(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestIDIsEchoedWhenSupplied(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}
