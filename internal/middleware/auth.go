package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tastetrail/restaurant-backend/internal/auth"
)

// BearerAuth middleware verifies the bearer token from the Authorization
// header and stores the verified identity email in the request context.
func BearerAuth(verifier auth.Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				unauthorized(w, "Unauthorized: bearer token required")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
			email, err := verifier.Verify(r.Context(), token)
			if err != nil {
				unauthorized(w, "Unauthorized: invalid token")
				return
			}

			ctx := auth.WithIdentity(r.Context(), email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
