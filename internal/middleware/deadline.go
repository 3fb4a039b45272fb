package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the end-to-end request so a slow downstream service cannot
// hang a caller. Downstream calls inherit the context and are abandoned on
// expiry or client disconnect.
func Deadline(d time.Duration, next http.Handler) http.Handler {
	if d <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
