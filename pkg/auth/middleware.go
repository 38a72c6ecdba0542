package auth

import (
	"net/http"
	"strings"

	"github.com/peerfact-labs/peerfact/pkg/api"
)

// publicPaths are endpoints reachable without a token. Bootstrap must stay
// public or nobody could ever obtain a first token.
var publicPaths = []string{
	"/health",
	"/api/users/bootstrap",
	"/api/status",
}

// isPublicPath checks if the path is accessible without auth.
func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// NewMiddleware creates bearer-token auth middleware around the issuer.
// A nil issuer rejects every non-public request (fail closed).
func NewMiddleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.WriteUnauthorized(w, "Missing Authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				api.WriteUnauthorized(w, "Invalid Authorization header format (expected 'Bearer <token>')")
				return
			}

			if issuer == nil {
				api.WriteUnauthorized(w, "Authentication not configured")
				return
			}

			claims, err := issuer.Validate(parts[1])
			if err != nil {
				api.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			principal := Principal{UserID: claims.Subject, Username: claims.Username}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
