package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alivegrid/alivegrid/internal/auth"
)

// Auth returns middleware that extracts the caller identity from a bearer
// token. Authentication itself lives outside this service; the token only
// attributes votes and reports to a user.
//
// Requests without an Authorization header pass through anonymous. A header
// that is present but does not carry a valid access token is rejected with
// 401, because a client that sent credentials expects them to count.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, r, "Authorization header must be a bearer token")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil || claims.Type != auth.TokenTypeAccess {
				writeAuthError(w, r, "Invalid or expired token")
				return
			}

			ctx := SetUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError emits the standard error envelope without importing the api
// package, which sits above this one.
func writeAuthError(w http.ResponseWriter, r *http.Request, message string) {
	*r = *r.WithContext(SetErrorCode(r.Context(), "auth_failed"))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": "auth_failed", "message": message},
	})
}
