// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/hammer/internal/domain"
)

// SessionResolver turns a session token into the signed-in user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// NewJWTMiddleware authenticates requests by Bearer header or auth cookie.
func NewJWTMiddleware(sessions SessionResolver, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "authentication credentials were not provided")
				return
			}

			user, err := sessions.CurrentUser(r.Context(), token)
			if err != nil {
				logger.Warn("rejected session token", "error", err, "path", r.URL.Path)
				if fromCookie {
					clearAuthCookie(w)
				}
				writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by the JWT middleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value, true
	}
	return "", false
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
