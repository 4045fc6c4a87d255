package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finsight/internal/api"
	"finsight/internal/core"
	"finsight/internal/notify"
	"finsight/internal/session"
)

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// idParam reads the {id} route parameter, 0 when malformed.
func idParam(r *http.Request) int64 {
	return core.ParseID(chi.URLParam(r, "id"))
}

// sessionOf returns the request session opened by the session middleware.
func (s *Server) sessionOf(w http.ResponseWriter, r *http.Request) *session.Session {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess
	}
	return s.sessions.Open(w, r)
}

// clientFor is the backend client carrying the session's bearer token.
func (s *Server) clientFor(sess *session.Session) *api.Client {
	return s.api.With(api.BearerToken(sess))
}

func (s *Server) sinkFor(sess *session.Session) notify.Sink {
	return s.notifier.For(sess.ClientID())
}

// redirect answers with 303 so the browser follows with a GET.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
