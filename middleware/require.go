package middleware

import (
	"net/http"

	authcore "github.com/tendera/authcore"
)

// RequirePermission rejects requests whose authenticated user lacks the
// named permission. It must run after Protect.
func RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in")
				return
			}
			if !user.HasPermission(name) {
				writeJSONError(w, http.StatusForbidden, "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission rejects requests unless the authenticated user
// holds at least one of the named permissions.
func RequireAnyPermission(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in")
				return
			}
			if !user.HasAnyPermission(names...) {
				writeJSONError(w, http.StatusForbidden, "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests unless the authenticated user holds one
// of the named roles exactly.
func RequireRole(roles ...authcore.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "you do not have permission to perform this action")
		})
	}
}
