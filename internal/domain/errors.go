// File: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies business-rule failures returned to the boundary layer.
type ErrorKind string

const (
	KindValidation       ErrorKind = "VALIDATION"
	KindMissingField     ErrorKind = "MISSING_FIELD"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindMismatch         ErrorKind = "MISMATCH"
	KindExpired          ErrorKind = "EXPIRED"
	KindCodeNotFound     ErrorKind = "CODE_NOT_FOUND"
	KindAlreadyActivated ErrorKind = "ALREADY_ACTIVATED"
	KindSelfActivation   ErrorKind = "SELF_ACTIVATION"
	KindReferralCycle    ErrorKind = "REFERRAL_CYCLE"
	KindProfileNotFound  ErrorKind = "PROFILE_NOT_FOUND"
	KindUserNotFound     ErrorKind = "USER_NOT_FOUND"
)

// HTTPStatus maps a kind to the status code the HTTP layer answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindMissingField, KindNotFound, KindMismatch, KindExpired:
		return http.StatusBadRequest
	case KindCodeNotFound, KindProfileNotFound, KindUserNotFound:
		return http.StatusNotFound
	case KindAlreadyActivated, KindSelfActivation, KindReferralCycle:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed business failure. Two errors match under errors.Is when
// their kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrMissingField     = &Error{Kind: KindMissingField, Message: "phone number and code are required"}
	ErrCodeNotRequested = &Error{Kind: KindNotFound, Message: "no verification code for this phone number, or it has expired"}
	ErrCodeMismatch     = &Error{Kind: KindMismatch, Message: "invalid verification code"}
	ErrCodeExpired      = &Error{Kind: KindExpired, Message: "verification code has expired, request a new one"}
	ErrInviteNotFound   = &Error{Kind: KindCodeNotFound, Message: "invite code does not exist"}
	ErrAlreadyActivated = &Error{Kind: KindAlreadyActivated, Message: "an invite code is already activated"}
	ErrSelfActivation   = &Error{Kind: KindSelfActivation, Message: "cannot activate your own invite code"}
	ErrReferralCycle    = &Error{Kind: KindReferralCycle, Message: "invite code belongs to one of your referrals"}
	ErrProfileNotFound  = &Error{Kind: KindProfileNotFound, Message: "profile not found"}
	ErrUserNotFound     = &Error{Kind: KindUserNotFound, Message: "user not found"}
)

// ErrConflict reports a lost uniqueness race in the store. It is recovered
// inside the services and never reaches the boundary.
var ErrConflict = errors.New("conflict: record already exists")

// NewValidationError builds a validation failure bound to a request field.
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewMissingFieldError reports an absent required field.
func NewMissingFieldError(field string) *Error {
	return &Error{Kind: KindMissingField, Field: field, Message: "field is required"}
}

// KindOf extracts the kind of a typed error, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
