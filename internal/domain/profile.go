// File: internal/domain/profile.go
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	InviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Profile carries the referral state of a user. ActivatedInviteCodeID points
// at the profile whose invite code this one activated.
type Profile struct {
	ID                    uint     `gorm:"primaryKey"`
	UserID                uint     `gorm:"uniqueIndex;not null"`
	User                  User     `gorm:"constraint:OnDelete:CASCADE"`
	InviteCode            string   `gorm:"uniqueIndex;not null;size:6"`
	ActivatedInviteCodeID *uint    `gorm:"index"`
	ActivatedInviteCode   *Profile `gorm:"foreignKey:ActivatedInviteCodeID;constraint:OnDelete:SET NULL"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsActivated reports whether the profile already used an invite code.
func (p *Profile) IsActivated() bool {
	return p.ActivatedInviteCodeID != nil
}

// ProfileView is the read model returned to an authenticated user.
type ProfileView struct {
	PhoneNumber          string   `json:"phone_number"`
	InviteCode           string   `json:"invite_code"`
	ActivatedInviteCode  *string  `json:"activated_invite_code"`
	ReferredUserIDs      []uint   `json:"referred_user_ids"`
	ReferredPhoneNumbers []string `json:"referred_users_phone_numbers"`
}

// GenerateInviteCode returns a random 6-character uppercase alphanumeric code.
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	code := make([]byte, InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
