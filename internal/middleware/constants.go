// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication
type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "request_id"
)

// AuthCookieName carries the session token for browser clients.
const AuthCookieName = "auth_token"

// RequestIDHeader echoes the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// Logger is the structured logger shared with the services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
