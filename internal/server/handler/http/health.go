package http

import "net/http"

// HealthHandler serves GET /healthz. Check is optional; without it the
// process is healthy whenever it answers.
type HealthHandler struct {
	Check func() bool
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Check != nil && !h.Check() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
