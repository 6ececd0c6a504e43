package session

import (
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/agriai/backend-mandi/internal/common"
)

// Middleware authenticates requests by parsing the bearer token and
// exposing the user id and marketplace role on the request context. The
// fee engine itself never reads this ambient state: handlers pull the role
// out once and pass it down as an explicit parameter.
type Middleware struct {
	Secret []byte
}

// Authenticate parses and validates the bearer token when present. The
// request proceeds unauthenticated if no token is supplied; RequireRole
// gates the routes that need an identity.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" || raw == header {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "malformed authorization header", nil)
			return
		}
		tok, err := jwt.Parse([]byte(raw),
			jwt.WithKey(jwa.HS256, m.Secret),
			jwt.WithValidate(true),
		)
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}
		role := ""
		if v, ok := tok.Get("role"); ok {
			if s, ok := v.(string); ok {
				role = strings.ToLower(strings.TrimSpace(s))
			}
		}
		ctx := common.WithIdentity(r.Context(), tok.Subject(), role)
		if v, ok := tok.Get("email"); ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				ctx = common.WithEmail(ctx, strings.TrimSpace(s))
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose session role is not in the allowed set.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToLower(role)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := common.UserID(r.Context())
			if !ok || strings.TrimSpace(userID) == "" {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
				return
			}
			role, _ := common.Role(r.Context())
			if _, ok := allowed[role]; !ok {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "role not permitted", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
