package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// AdminToken gates mutating index endpoints behind a shared-secret header.
// An empty configured token disables the check.
func AdminToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("X-Admin-Token") != token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			resp := map[string]interface{}{
				"error": map[string]string{
					"code":    "UNAUTHORIZED",
					"message": "Invalid admin token",
				},
				"correlationId": GetCorrelationID(r.Context()),
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				slog.Error("failed to encode error response", "error", err)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
