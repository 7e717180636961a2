package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health handles GET /health. It reports the process as alive.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns a handler for GET /ready that answers 503 until ready
// reports true.
func Ready(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status, code := "ready", http.StatusOK
		if ready != nil && !ready() {
			status, code = "starting", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
