package httpx

import (
	"net/http"
	"strings"
)

// RequireRole gates a handler on the caller's role matching exactly.
func RequireRole(required string) Middleware {
	return RequireAnyRole(required)
}

// RequireAnyRole gates a handler on the caller holding at least one of
// the listed roles. The caller must already be authenticated (see
// AuthnMiddleware).
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromCtx(r.Context())
			if _, ok := want[role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			writeRoleError(w, required...)
		})
	}
}

func writeRoleError(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="insufficient_role", role="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "insufficient_role",
		"error_description": "caller role is not permitted to perform this operation",
	})
}
