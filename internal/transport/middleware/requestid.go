package middleware

import (
	"net/http"

	"github.com/autorentar/rental-payments/pkg/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// RequestID propagates X-Trace-ID, falling back to chi's request id and then a
// fresh uuid, and attaches it to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = middleware.GetReqID(r.Context())
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
