package handler

import "net/http"

// Version labels the running revision; /api/ping reports it so a deployed
// instance can be checked without shell access. The value tracks the
// login-fallback revision history of the auth core.
const Version = "login-fallback-v3"

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HandleHealth is the liveness probe.
//
// HTTP: GET /api/health → {"ok":true}
// Deliberately DB-independent: a wedged database should show up in request
// errors, not take the liveness probe down with it.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandlePing reports liveness plus the revision marker.
//
// HTTP: GET /api/ping → {"ok":true,"version":"..."}
func (h *HealthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": Version})
}
