package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is reported when a request lacks a valid bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// RequireToken returns middleware that admits only requests carrying
// "Authorization: Bearer <secret>". An empty secret disables the check.
func RequireToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validBearer(r.Header.Get("Authorization"), secret) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="pulsecheck"`)
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: ErrUnauthorized.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validBearer compares the presented token with secret in constant time.
func validBearer(header, secret string) bool {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
