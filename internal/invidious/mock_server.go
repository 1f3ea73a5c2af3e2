package invidious

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer is a configurable Invidious mock for tests. It serves the
// videos endpoint and a master playlist endpoint from in-memory fixtures.
type MockServer struct {
	*httptest.Server
	mu     sync.RWMutex
	videos map[string]string // video id -> raw JSON body
	master string            // master playlist body
	fail   int               // HTTP status to force on the videos endpoint, 0 = off
	hits   map[string]int    // path prefix -> request count
}

// NewMockServer starts a mock with no fixtures loaded.
func NewMockServer() *MockServer {
	mock := &MockServer{
		videos: make(map[string]string),
		hits:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/videos/", mock.handleVideo)
	mux.HandleFunc("/master.m3u8", mock.handleMaster)

	mock.Server = httptest.NewServer(mux)
	return mock
}

// SetVideoJSON registers the raw videos-endpoint response for one id.
func (m *MockServer) SetVideoJSON(videoID, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[videoID] = body
}

// SetMaster registers the master playlist body served at /master.m3u8.
func (m *MockServer) SetMaster(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = body
}

// FailWith forces the videos endpoint to answer with the given status.
func (m *MockServer) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = status
}

// Hits reports how many requests reached the given endpoint prefix.
func (m *MockServer) Hits(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits[prefix]
}

// MasterURL returns the absolute URL of the mock's master playlist.
func (m *MockServer) MasterURL() string {
	return m.URL + "/master.m3u8"
}

func (m *MockServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits["/api/v1/videos/"]++
	fail := m.fail
	videoID := strings.TrimPrefix(r.URL.Path, "/api/v1/videos/")
	body, ok := m.videos[videoID]
	m.mu.Unlock()

	if fail != 0 {
		http.Error(w, `{"error":"injected failure"}`, fail)
		return
	}
	if !ok {
		http.Error(w, `{"error":"video not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (m *MockServer) handleMaster(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits["/master.m3u8"]++
	body := m.master
	m.mu.Unlock()

	if body == "" {
		http.Error(w, "no playlist configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	_, _ = w.Write([]byte(body))
}
