package middleware

import (
	"net/http"
	"sync/atomic"
)

// InFlight counts requests currently being served. Each server owns its own
// instance, so counts never leak between stores.
type InFlight struct {
	active atomic.Int64
}

func NewInFlight() *InFlight {
	return &InFlight{}
}

func (f *InFlight) Active() int64 {
	return f.active.Load()
}

func (f *InFlight) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.active.Add(1)
		defer f.active.Add(-1)
		next.ServeHTTP(w, r)
	})
}
