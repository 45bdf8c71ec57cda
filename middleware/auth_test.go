package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("clash-test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func protectedEndpoint(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var gotPlayerID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := GetPlayerIDFromContext(r.Context()); err == nil {
			gotPlayerID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(testSecret)(next), &gotPlayerID
}

func TestAuthenticateValidToken(t *testing.T) {
	handler, gotPlayerID := protectedEndpoint(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"player_id": "p1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", *gotPlayerID)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	handler, _ := protectedEndpoint(t)

	req := httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsBadSignatureAndExpiry(t *testing.T) {
	handler, _ := protectedEndpoint(t)

	forged := signToken(t, []byte("other-secret"), jwt.MapClaims{"player_id": "p1"})
	req := httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := signToken(t, testSecret, jwt.MapClaims{
		"player_id": "p1",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPlayerIDFromContextMissingClaim(t *testing.T) {
	handler, gotPlayerID := protectedEndpoint(t)

	// Service tokens act on behalf of other players and omit the claim.
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodPost, "/teams/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, *gotPlayerID)
}
