// File: internal/handlers/admin_handler.go
package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/hammer/internal/dtos"
	"github.com/iyunix/hammer/internal/services/admin_services"
)

type AdminHandler struct {
	adminService *admin_services.AdminService
	logger       Logger
}

func NewAdminHandler(adminService *admin_services.AdminService, logger Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetAllUsersHandler handles the API request to fetch users with pagination and search.
func (h *AdminHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.adminService.ListUsers(r.Context(), page, limit, query.Get("search"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dtos.NewUserPage(result.Users, result.Total, result.Page, result.Limit))
}

// DeleteUserHandler removes a user and detaches the profiles it referred.
func (h *AdminHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), uint(id)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("user deleted by admin", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// PurgeCodesHandler removes expired verification codes.
func (h *AdminHandler) PurgeCodesHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.adminService.PurgeExpiredCodes(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *AdminHandler) ExportUsersCSVHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ExportUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	filename := fmt.Sprintf("users_export_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	header := []string{"ID", "PhoneNumber", "IsActive", "IsStaff", "IsSuperuser", "CreatedAt"}
	if err := csvWriter.Write(header); err != nil {
		h.logger.Error("failed to write CSV header", "error", err)
		return
	}

	for _, user := range users {
		record := []string{
			strconv.FormatUint(uint64(user.ID), 10),
			user.PhoneNumber,
			strconv.FormatBool(user.IsActive),
			strconv.FormatBool(user.IsStaff),
			strconv.FormatBool(user.IsSuperuser),
			user.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := csvWriter.Write(record); err != nil {
			h.logger.Error("failed to write CSV record", "error", err, "user_id", user.ID)
			return
		}
	}
	h.logger.Info("exported users to CSV", "count", len(users))
}
