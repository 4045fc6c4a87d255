package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady runs every readiness check under a shared deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{
		"templates":    "ok",
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients()},
	}
	if len(s.templates) != len(pages) {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleAuthRedirect sends a logged-in browser home and anyone else to login.
func (s *Server) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	if s.sessionOf(w, r).HasToken() {
		redirect(w, r, "/")
		return
	}
	redirect(w, r, "/login")
}

// handleDismiss closes the pending notification. Script callers get 204,
// plain form posts are sent back to the page they came from.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionOf(w, r)
	s.notifier.Dismiss(r.Context(), sess.ClientID())

	if r.Header.Get("HX-Request") == "true" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirect(w, r, localPath(r.FormValue("return")))
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
