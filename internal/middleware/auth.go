package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const principalEmailKey contextKey = "principalEmail"

// PrincipalEmail returns the authenticated principal's email from the request
// context, or "" when the request was not authenticated.
func PrincipalEmail(ctx context.Context) string {
	email, _ := ctx.Value(principalEmailKey).(string)
	return email
}

// AuthMiddleware validates the Bearer token and injects the principal email
// into the request context. Requests without a valid token get 401.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			email, err := token.Claims.GetSubject()
			if err != nil || email == "" {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
