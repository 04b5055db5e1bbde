package httpx

import (
	"net/http"
	"strings"
)

// TokenVerifier validates a session token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SessionToken extracts a bearer token, falling back to the named cookie.
func SessionToken(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session with 401.
func AuthMiddleware(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				Unauthorized(w, r)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				Unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
		})
	}
}
