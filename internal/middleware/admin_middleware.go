// File: internal/middleware/admin_middleware.go
package middleware

import (
	"net/http"
)

// RequireStaff rejects authenticated users without the staff flag.
// It must run after NewJWTMiddleware.
func RequireStaff(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "authentication credentials were not provided")
				return
			}
			if !user.IsStaff {
				logger.Warn("non-staff user denied admin route", "user_id", user.ID, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "PERMISSION_DENIED", "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
