package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	profileService services.ProfileService
	adminService   services.AdminService
}

func NewDashboardHandler(profileService services.ProfileService, adminService services.AdminService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
		adminService:   adminService,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetSummary returns the caller's dashboard cards
// @Summary Get dashboard summary
// @Description Attendance rate, submitted resources, notes and enrolled courses for the caller
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.profileService.Dashboard(c.Request.Context(), currentSession(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSystemStats returns admin-wide counts
// @Summary Get system statistics
// @Tags admin
// @Produce json
// @Success 200 {object} repositories.SystemStats
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /admin/stats [get]
func (h *DashboardHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
