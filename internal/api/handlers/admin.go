package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/service"
)

type AdminHandler struct {
	accounts *service.AccountService
}

func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ListUsers godoc
// @Summary List all users (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response{data=[]models.User}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), auth.Identity(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Users retrieved successfully", users)
}

// SetUserRole godoc
// @Summary Change a user's role (admin only)
// @Description Takes effect on the user's next request.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body service.SetRoleRequest true "New role"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	id, valid := pathID(c, "user")
	if !valid {
		return
	}
	var req service.SetRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.SetRole(c.Request.Context(), auth.Identity(c), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Role updated successfully", user)
}
