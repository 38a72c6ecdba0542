package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerfact-labs/peerfact/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("u1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour).
		WithClock(func() time.Time { return now })

	token, err := issuer.Issue("u1", "alice")
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	require.NoError(t, err)

	// Jump past the ttl.
	now = now.Add(2 * time.Hour)
	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := auth.NewTokenIssuer("secret-a", time.Hour).Issue("u1", "alice")
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_NoSecret(t *testing.T) {
	_, err := auth.NewTokenIssuer("", time.Hour).Issue("u1", "alice")
	assert.Error(t, err)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_PublicPathBypasses(t *testing.T) {
	handler := auth.NewMiddleware(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/users/bootstrap", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RejectsMissingOrBadToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := auth.NewMiddleware(issuer)(okHandler())

	// No header.
	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong scheme.
	req = httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_AcceptsValidTokenAndSetsPrincipal(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("u1", "alice")
	require.NoError(t, err)

	var principal auth.Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := auth.GetPrincipal(r.Context())
		require.NoError(t, err)
		principal = p
		w.WriteHeader(http.StatusOK)
	})

	handler := auth.NewMiddleware(issuer)(inner)
	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", principal.UserID)
	assert.Equal(t, "alice", principal.Username)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	})
	handler := auth.RequestIDMiddleware(inner)

	// Generated when absent.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	// Reused when supplied.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", seen)
}
