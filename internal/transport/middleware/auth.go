package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/transport"
	"github.com/autorentar/rental-payments/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// RequireBearer rejects requests without an "Authorization: Bearer" header.
// With a non-empty secret the token must also be a valid HS256 JWT; its
// subject is stored in the request context.
func RequireBearer(secret string, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.ExtractTokenFromHeader(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}

			subject := ""
			if secret != "" {
				sub, err := verifyToken(token, secret)
				if err != nil {
					lg.Warn("bearer token rejected", "error", err, "path", r.URL.Path)
					writeUnauthorized(w)
					return
				}
				subject = sub
			}

			ctx := internal.ContextWithSubject(r.Context(), subject)
			ctx = logger.With(ctx, "subject", subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyToken(token, secret string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("token is not valid")
	}
	return claims.Subject, nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(transport.ErrorResponse{
		Error: internal.ErrUnauthorized.Message,
		Code:  internal.ErrUnauthorized.Code,
	})
}
