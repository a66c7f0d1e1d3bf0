// File: internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/iyunix/hammer/internal/domain"
)

// Logger is the structured logger shared with the services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
}

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps business errors to their status; anything else is a 500
// whose details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, logger Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, de.Kind.HTTPStatus(), errorResponse{
			ErrorCode: string(de.Kind),
			Message:   de.Message,
			Field:     de.Field,
		})
		return
	}

	logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		ErrorCode: "INTERNAL_ERROR",
		Message:   "something went wrong on our end",
	})
}

// decodeBody reads a JSON or form-encoded body into dst. Form fields are
// mapped onto dst's json tags.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return domain.NewValidationError("", "invalid form data")
		}
		fields := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			fields[key] = r.PostForm.Get(key)
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("", "request body must be a JSON object with string fields")
	}
	return nil
}
