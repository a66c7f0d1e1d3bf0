// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/hammer/internal/domain"
)

// AdminUserResponseDTO is the user shape returned by admin endpoints.
// The password hash never leaves the service.
type AdminUserResponseDTO struct {
	ID                uint   `json:"id"`
	PhoneNumber       string `json:"phone_number"`
	IsActive          bool   `json:"is_active"`
	IsStaff           bool   `json:"is_staff"`
	IsSuperuser       bool   `json:"is_superuser"`
	HasUsablePassword bool   `json:"has_usable_password"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// UserPageResponseDTO wraps one page of the admin user listing.
type UserPageResponseDTO struct {
	Users      []AdminUserResponseDTO `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// ToAdminDomain maps a domain.User to AdminUserResponseDTO for admin endpoints.
func ToAdminDomain(user domain.User) AdminUserResponseDTO {
	return AdminUserResponseDTO{
		ID:                user.ID,
		PhoneNumber:       user.PhoneNumber,
		IsActive:          user.IsActive,
		IsStaff:           user.IsStaff,
		IsSuperuser:       user.IsSuperuser,
		HasUsablePassword: user.HasUsablePassword(),
		CreatedAt:         user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToAdminDomainSlice maps a slice of domain.User to []AdminUserResponseDTO.
func ToAdminDomainSlice(users []domain.User) []AdminUserResponseDTO {
	dtos := make([]AdminUserResponseDTO, len(users))
	for i, user := range users {
		dtos[i] = ToAdminDomain(user)
	}
	return dtos
}

// NewUserPage builds the paginated listing response.
func NewUserPage(users []domain.User, total int64, page, limit int) UserPageResponseDTO {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return UserPageResponseDTO{
		Users:      ToAdminDomainSlice(users),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
