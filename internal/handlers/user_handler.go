package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

// UserHandler serves admin user management.
type UserHandler struct {
	BaseHandler
	adminService services.AdminService
}

func NewUserHandler(adminService services.AdminService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Description Paginated user list with enrollment counts
// @Tags admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search name, email, student id or username"
// @Param role query string false "student or admin"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := repositories.UserFilters{
		Query:       c.Query("q"),
		ListOptions: parseListOptions(c),
	}
	if role := optionalQuery(c, "role"); role != nil {
		r := models.UserRole(strings.ToLower(*role))
		filters.Role = &r
	}

	resp, err := h.adminService.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateRole switches a user between student and admin. The user's
// sessions are revoked.
// @Summary Change user role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body models.RoleUpdateRequest true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req models.RoleUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	h.LogRequest(c, "Updating user role", "target_id", id, "role", req.Role)

	user, err := h.adminService.UpdateRole(c.Request.Context(), currentSession(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and everything they own. Requires ?confirm=true.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	h.LogRequest(c, "Deleting user", "target_id", id, "confirm", confirm)

	if err := h.adminService.DeleteUser(c.Request.Context(), currentSession(c), id, confirm); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted"})
}
