package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	var gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = PrincipalEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := AuthMiddleware(cfg)(next)

	t.Run("ValidToken", func(t *testing.T) {
		gotEmail = ""
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "user@example.com", time.Hour))
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user@example.com", gotEmail)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user@example.com", time.Hour))
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "user@example.com", -time.Hour))
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPrincipalEmailWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", PrincipalEmail(req.Context()))
}
