// Package middleware provides the HTTP middleware chain shared by all
// routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"corpcheck/pkg/requestcontext"
)

// RequestMeta stamps each request's context with a request id and a single
// request-scoped time. Services read both through requestcontext so that
// expiry checks within one request are consistent and testable.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
