package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	scheduleService services.ScheduleService
	now             func() time.Time
}

func NewScheduleHandler(scheduleService services.ScheduleService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler:     NewBaseHandler(logger),
		scheduleService: scheduleService,
		now:             time.Now,
	}
}

func (h *ScheduleHandler) List(c *gin.Context) {
	filters := repositories.ScheduleFilters{
		Day:        optionalQuery(c, "day"),
		CourseCode: optionalQuery(c, "course"),
		Query:      c.Query("q"),
	}
	classes, err := h.scheduleService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

func (h *ScheduleHandler) Week(c *gin.Context) {
	days, err := h.scheduleService.Week(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	classes, err := h.scheduleService.Upcoming(c.Request.Context(), h.now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req models.ClassSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	class, err := h.scheduleService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	var req models.ClassSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	class, err := h.scheduleService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.scheduleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
