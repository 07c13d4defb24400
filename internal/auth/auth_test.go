package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/couponTracker/coupon-ocr-service/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func initAuth(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	require.NoError(t, Init())
}

func TestInitRequiresLongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	assert.Error(t, Init())

	t.Setenv("JWT_SECRET", "")
	assert.Error(t, Init())
}

func TestTokenRoundTrip(t *testing.T) {
	initAuth(t)

	token, err := GenerateToken("mobile-app", "Mobile App", "app")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "mobile-app", claims.ClientID)
	assert.Equal(t, "Mobile App", claims.Name)
	assert.Equal(t, "app", claims.Role)
	assert.Equal(t, "coupon-ocr-service", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	initAuth(t)

	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestMiddlewarePublicPaths(t *testing.T) {
	initAuth(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scans/recent", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	initAuth(t)

	token, err := GenerateToken("mobile-app", "Mobile App", "app")
	require.NoError(t, err)

	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetClaimsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	JWTMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "mobile-app", got.ClientID)
}

func TestLoginHandler(t *testing.T) {
	initAuth(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-value"), bcrypt.MinCost)
	require.NoError(t, err)

	clients := []config.APIClient{
		{ID: "mobile-app", Name: "Mobile App", Role: "app", PasswordHash: string(hash)},
	}
	handler := LoginHandler(clients)

	login := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(body))
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := login(`{"client_id":"mobile-app","secret":"s3cret-value"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "app", resp.Role)

	claims, err := ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "mobile-app", claims.ClientID)

	assert.Equal(t, http.StatusUnauthorized, login(`{"client_id":"mobile-app","secret":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(`{"client_id":"unknown","secret":"s3cret-value"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(`{"client_id":"mobile-app"}`).Code)
}

func TestLoginHandlerMethodNotAllowed(t *testing.T) {
	initAuth(t)

	rec := httptest.NewRecorder()
	LoginHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
