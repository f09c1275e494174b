package httpx

import (
	"net/http"
	"slices"
)

// DenyFunc observes a request rejected by RequireAnyRole.
type DenyFunc func(r *http.Request, required []string)

// RequireAnyRole lets the request through when the authenticated role is one
// of roles. It must run after AuthnMiddleware. onDeny may be nil.
func RequireAnyRole(onDeny DenyFunc, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(roles, RoleFromContext(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}

			if onDeny != nil {
				onDeny(r, roles)
			}
			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":   "access_denied",
				"message": "Access denied. Insufficient permissions.",
			})
		})
	}
}
