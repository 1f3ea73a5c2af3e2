package api

import (
	"net/http"
	"time"

	"github.com/ManuGH/yt2g/internal/version"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        version.Version,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

// handleReadyz reports readiness: without mirrors every request would fail,
// so an empty pool keeps the daemon out of rotation.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if len(s.cfg.Mirrors()) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no mirrors configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
