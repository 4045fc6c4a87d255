// Package session keeps the browser's bearer token in a signed cookie and
// derives the (unverified) role claim from it.
package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"finsight/internal/log"
)

const (
	// CookieName is the fixed storage key of the client slot.
	CookieName = "finsight_session"

	tokenKey    = "token"
	clientIDKey = "client_id"

	maxAge = 30 * 24 * 60 * 60
)

// Manager opens per-request sessions over a cookie store.
type Manager struct {
	store  sessions.Store
	logger *log.Logger
}

func NewManager(secret []byte, secure bool, logger *log.Logger) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, logger: logger.WithComponent(log.ComponentSession)}
}

// Open returns the request's session. A cookie that fails to decode is
// replaced by an empty session rather than reported.
func (m *Manager) Open(w http.ResponseWriter, r *http.Request) *Session {
	sess, err := m.store.Get(r, CookieName)
	if err != nil {
		m.logger.WarnContext(r.Context(), "Discarding unreadable session cookie", log.FieldError, err)
		sess, _ = m.store.New(r, CookieName)
		sess.IsNew = true
	}
	return &Session{r: r, w: w, sess: sess, logger: m.logger}
}

// Session is one browser's persisted slot for the duration of a request.
type Session struct {
	r      *http.Request
	w      http.ResponseWriter
	sess   *sessions.Session
	logger *log.Logger
}

// Token returns the persisted token; it never fails.
func (s *Session) Token() (string, bool) {
	t, ok := s.sess.Values[tokenKey].(string)
	if !ok || t == "" {
		return "", false
	}
	return t, true
}

// HasToken reports whether the browser counts as logged in.
func (s *Session) HasToken() bool {
	_, ok := s.Token()
	return ok
}

// SetToken persists t. The new value is visible to Token and Role right away.
func (s *Session) SetToken(t string) error {
	s.sess.Values[tokenKey] = t
	return s.save()
}

func (s *Session) ClearToken() error {
	delete(s.sess.Values, tokenKey)
	return s.save()
}

// Role decodes the token's role claim without verifying it. Any decode
// failure reads as no role.
func (s *Session) Role() string {
	t, ok := s.Token()
	if !ok {
		return ""
	}
	role, err := DecodeRole(t)
	if err != nil {
		s.logger.WarnContext(s.r.Context(), "Token decode error", log.FieldOperation, log.OpDecode, log.FieldError, err)
		return ""
	}
	return role
}

func (s *Session) IsAdmin() bool {
	return IsAdminRole(s.Role())
}

// ClientID identifies the browser for per-client state such as the
// notification slot. It is created and persisted on first use.
func (s *Session) ClientID() string {
	if id, ok := s.sess.Values[clientIDKey].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.sess.Values[clientIDKey] = id
	if err := s.save(); err != nil {
		s.logger.WarnContext(s.r.Context(), "Failed to persist client id", log.FieldError, err)
	}
	return id
}

func (s *Session) save() error {
	if err := s.sess.Save(s.r, s.w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

type contextKey struct{}

// Middleware opens the session once per request, makes sure the browser has
// a client id, and stores the session in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Open(w, r)
		ctx := context.WithValue(r.Context(), contextKey{}, s)
		s.r = r.WithContext(ctx)
		s.ClientID()
		next.ServeHTTP(w, s.r)
	})
}

// FromContext returns the session stored by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
