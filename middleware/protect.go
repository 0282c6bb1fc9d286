package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	authcore "github.com/tendera/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the user authenticated by Protect.
func IdentityFromContext(ctx context.Context) (*authcore.User, bool) {
	user, ok := ctx.Value(identityContextKey{}).(*authcore.User)
	return user, ok
}

// Protect authenticates the request via the Authorization header or,
// failing that, the token cookie, and stores the resolved user on the
// request context. Requests without a valid token are rejected.
func Protect(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in")
				return
			}

			token, ok := requestToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in")
				return
			}

			user, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, authMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken pulls the session token from the request, preferring the
// Authorization header over the cookie.
func requestToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func authMessage(err error) string {
	switch authcore.Classify(err) {
	case authcore.KindAuthentication:
		return err.Error()
	default:
		return "you are not logged in"
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "fail",
		"message": message,
	})
}
