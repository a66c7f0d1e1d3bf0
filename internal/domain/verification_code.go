// File: internal/domain/verification_code.go
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	// VerificationCodeTTL is how long an issued code stays valid.
	VerificationCodeTTL    = 5 * time.Minute
	VerificationCodeLength = 4
)

var verificationCodePattern = regexp.MustCompile(`^[0-9]{4}$`)

// VerificationCode is the single outstanding code for a phone number.
type VerificationCode struct {
	ID          uint      `gorm:"primaryKey"`
	PhoneNumber string    `gorm:"uniqueIndex;not null;size:15"`
	Code        string    `gorm:"not null;size:4"`
	CreatedAt   time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"index;not null"`
}

// NewVerificationCode builds a record issued at now with a fresh code.
func NewVerificationCode(phone string, now time.Time) (*VerificationCode, error) {
	code, err := GenerateVerificationCode()
	if err != nil {
		return nil, err
	}
	return &VerificationCode{
		PhoneNumber: phone,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(VerificationCodeTTL),
	}, nil
}

// IsValid reports whether the code is still usable at now.
func (v *VerificationCode) IsValid(now time.Time) bool {
	return now.Before(v.ExpiresAt)
}

// Matches compares a submitted code with the stored one.
func (v *VerificationCode) Matches(code string) bool {
	return v.Code == code
}

// GenerateVerificationCode returns a uniformly random 4-digit code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// ValidateVerificationCode checks the submitted code format.
func ValidateVerificationCode(code string) error {
	if !verificationCodePattern.MatchString(code) {
		return NewValidationError("code", "code must be 4 digits")
	}
	return nil
}
