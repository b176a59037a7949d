package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/monplancbd/storefront/pkg/config"
)

func sessionConfig(secret string) config.SessionConfig {
	return config.SessionConfig{
		CookieName:   "mpc_session",
		TTL:          time.Hour,
		CookieSecure: false,
		JWTSecret:    secret,
		JWTIssuer:    "monplancbd",
	}
}

func sessionEcho(t *testing.T, captured *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSessionIssuesCookieForNewVisitor(t *testing.T) {
	var seen string
	handler := Session(sessionConfig(""), nil)(sessionEcho(t, &seen))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected uuid session id, got %q", seen)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "mpc_session" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if cookies[0].Value != seen {
		t.Fatalf("cookie must carry the session id without a secret configured")
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	var seen string
	handler := Session(sessionConfig(""), nil)(sessionEcho(t, &seen))

	existing := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "mpc_session", Value: existing})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if seen != existing {
		t.Fatalf("expected session %q reused, got %q", existing, seen)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("no new cookie expected for a valid session")
	}
}

func TestSessionSignedCookieRoundTrip(t *testing.T) {
	cfg := sessionConfig("test-secret")

	var first string
	issue := Session(cfg, nil)(sessionEcho(t, &first))
	w := httptest.NewRecorder()
	issue.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected signed cookie issued")
	}
	if cookies[0].Value == first {
		t.Fatalf("signed cookie must not carry the raw session id")
	}
	if strings.Count(cookies[0].Value, ".") != 2 {
		t.Fatalf("expected a JWT-shaped cookie, got %q", cookies[0].Value)
	}

	var second string
	replay := Session(cfg, nil)(sessionEcho(t, &second))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	replay.ServeHTTP(httptest.NewRecorder(), r)

	if second != first {
		t.Fatalf("expected session %q from signed cookie, got %q", first, second)
	}
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	cfg := sessionConfig("test-secret")

	var first string
	issue := Session(cfg, nil)(sessionEcho(t, &first))
	w := httptest.NewRecorder()
	issue.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := w.Result().Cookies()[0]

	// Forge a token with a different secret.
	forged := Session(sessionConfig("other-secret"), nil)
	var second string
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)

	w2 := httptest.NewRecorder()
	forged(sessionEcho(t, &second)).ServeHTTP(w2, r)

	if second == first {
		t.Fatalf("tampered cookie must not resolve to the original session")
	}
	if len(w2.Result().Cookies()) != 1 {
		t.Fatalf("expected a replacement cookie for the rejected session")
	}
}
