package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
)

// MiddlewareSession requires a valid session token in the named cookie and
// stores its claims with jwt.SetAuth. A token issued for another realm than
// the :realm path parameter is rejected.
func MiddlewareSession(verifier jwt.JWT, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				writeJSON(w, errorResponse{Message: "Authentication session required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(c.Value)
			if err != nil {
				writeJSON(w, errorResponse{Message: "Invalid or expired authentication session"}, http.StatusUnauthorized)
				return
			}

			if realm := (&Request{Request: r}).GetParam("realm"); realm != "" && realm != claims.Realm {
				writeJSON(w, errorResponse{Message: "Authentication session belongs to another realm"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

// MiddlewareAPIKey guards internal endpoints with a shared secret header.
// An empty key rejects every request.
func MiddlewareAPIKey(header, key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSON(w, errorResponse{Message: "Invalid API key"}, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
