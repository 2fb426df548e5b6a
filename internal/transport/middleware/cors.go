package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS answers preflight requests before they reach the handlers' own method
// checks. allowedOrigins is a comma separated list; empty or "*" allows any
// origin.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       splitOrigins(allowedOrigins),
		AllowedMethods:       []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders:       []string{"Authorization", "Content-Type", "X-Request-Id", "X-Signature", "Stripe-Signature"},
		ExposedHeaders:       []string{"X-Trace-ID"},
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}

func splitOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
