// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/iyunix/hammer/internal/middleware"
	"github.com/iyunix/hammer/internal/services/user_services"
)

// AuthHandler serves the phone-code sign-in endpoints.
type AuthHandler struct {
	verification *user_services.VerificationService
	logger       Logger
	exposeCode   bool
	cookieSecure bool
	tokenTTL     time.Duration
}

type AuthHandlerOptions struct {
	ExposeVerificationCode bool
	CookieSecure           bool
	TokenTTL               time.Duration
}

func NewAuthHandler(verification *user_services.VerificationService, logger Logger, opts AuthHandlerOptions) *AuthHandler {
	return &AuthHandler{
		verification: verification,
		logger:       logger,
		exposeCode:   opts.ExposeVerificationCode,
		cookieSecure: opts.CookieSecure,
		tokenTTL:     opts.TokenTTL,
	}
}

type requestCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type requestCodeResponse struct {
	Detail    string    `json:"detail"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty"`
}

// RequestCode issues a verification code for the submitted phone number.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	issued, err := h.verification.RequestCode(r.Context(), req.PhoneNumber)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := requestCodeResponse{
		Detail:    "Verification code sent.",
		ExpiresAt: issued.ExpiresAt,
	}
	if h.exposeCode {
		resp.Code = issued.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type verifyCodeResponse struct {
	Detail  string `json:"detail"`
	Token   string `json:"token"`
	Created bool   `json:"created"`
}

// VerifyCode signs the user in and sets the session cookie.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.verification.Authenticate(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    result.Token,
		Expires:  time.Now().Add(h.tokenTTL),
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, verifyCodeResponse{
		Detail:  "Authentication successful.",
		Token:   result.Token,
		Created: result.Created,
	})
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out."})
}
