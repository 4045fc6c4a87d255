package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"finsight/internal/log"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// roundTrip opens a session on a request carrying the cookies from prev.
func roundTrip(m *Manager, prev *httptest.ResponseRecorder) (*Session, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prev != nil {
		for _, c := range prev.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	return m.Open(rec, req), rec
}

func TestSession_TokenRoundTrip(t *testing.T) {
	m := NewManager(testSecret, false, log.Discard())

	s, rec := roundTrip(m, nil)
	if _, ok := s.Token(); ok {
		t.Fatal("fresh session must have no token")
	}
	if err := s.SetToken("abc.def.ghi"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if got, ok := s.Token(); !ok || got != "abc.def.ghi" {
		t.Fatalf("token not visible immediately: %q %v", got, ok)
	}

	s2, rec2 := roundTrip(m, rec)
	if got, ok := s2.Token(); !ok || got != "abc.def.ghi" {
		t.Fatalf("token not persisted: %q %v", got, ok)
	}

	if err := s2.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	s3, _ := roundTrip(m, rec2)
	if _, ok := s3.Token(); ok {
		t.Fatal("token should be absent after ClearToken")
	}
}

func TestSession_Role(t *testing.T) {
	m := NewManager(testSecret, false, log.Discard())

	tests := []struct {
		name      string
		token     string
		wantRole  string
		wantAdmin bool
	}{
		{"admin claim", signedToken(t, jwt.MapClaims{"role": "Admin"}), "Admin", true},
		{"user claim", signedToken(t, jwt.MapClaims{"role": "User"}), "User", false},
		{"no role claim", signedToken(t, jwt.MapClaims{"sub": "42"}), "", false},
		{"malformed token", "definitely-not-a-jwt", "", false},
		{"bad payload segment", "aaa.!!!.ccc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := roundTrip(m, nil)
			if err := s.SetToken(tt.token); err != nil {
				t.Fatalf("SetToken: %v", err)
			}
			if got := s.Role(); got != tt.wantRole {
				t.Errorf("Role() = %q, want %q", got, tt.wantRole)
			}
			if got := s.IsAdmin(); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.wantAdmin)
			}
			if !s.HasToken() {
				t.Error("any present token counts as logged in")
			}
		})
	}
}

func TestSession_ExpiredTokenStillLoggedIn(t *testing.T) {
	m := NewManager(testSecret, false, log.Discard())
	s, _ := roundTrip(m, nil)
	expired := signedToken(t, jwt.MapClaims{"role": "Admin", "exp": 1})
	if err := s.SetToken(expired); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if !s.HasToken() || !s.IsAdmin() {
		t.Fatal("expiry is not checked client-side")
	}
}

func TestSession_TamperedCookieReadsAsEmpty(t *testing.T) {
	m := NewManager(testSecret, false, log.Discard())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	s := m.Open(httptest.NewRecorder(), req)
	if s.HasToken() {
		t.Fatal("unreadable cookie should behave as guest")
	}
}

func TestMiddleware_AssignsStableClientID(t *testing.T) {
	m := NewManager(testSecret, false, log.Discard())
	var seen []string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if s == nil {
			t.Fatal("session missing from context")
		}
		seen = append(seen, s.ClientID())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 2 || seen[0] == "" || seen[0] != seen[1] {
		t.Fatalf("client id not stable across requests: %v", seen)
	}
}
