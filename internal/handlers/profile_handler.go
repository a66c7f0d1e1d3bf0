// File: internal/handlers/profile_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/hammer/internal/middleware"
	"github.com/iyunix/hammer/internal/services/user_services"
)

type ProfileHandler struct {
	referrals *user_services.ReferralService
	logger    Logger
}

func NewProfileHandler(referrals *user_services.ReferralService, logger Logger) *ProfileHandler {
	return &ProfileHandler{referrals: referrals, logger: logger}
}

// GetProfile returns the signed-in user's profile and referrals.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.referrals.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type activateInviteRequest struct {
	InviteCode string `json:"invite_code"`
}

type activateInviteResponse struct {
	Detail        string `json:"detail"`
	ActivatedCode string `json:"activated_code"`
}

// ActivateInvite links the signed-in user to another user's invite code.
func (h *ProfileHandler) ActivateInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req activateInviteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	profile, err := h.referrals.Activate(r.Context(), user.ID, req.InviteCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	code := ""
	if profile.ActivatedInviteCode != nil {
		code = profile.ActivatedInviteCode.InviteCode
	}
	writeJSON(w, http.StatusOK, activateInviteResponse{
		Detail:        "Invite code activated.",
		ActivatedCode: code,
	})
}
