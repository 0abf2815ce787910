package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

// ProfileHandler serves the caller's profile and course enrollment.
type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	profile, err := h.profileService.Update(c.Request.Context(), currentSession(c).UserID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ===== COURSES =====

func (h *ProfileHandler) ListCourses(c *gin.Context) {
	resp, err := h.profileService.ListCourses(c.Request.Context(), repositories.CourseFilters{
		Query:       c.Query("q"),
		ListOptions: parseListOptions(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) Enrolled(c *gin.Context) {
	courses, err := h.profileService.Enrolled(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *ProfileHandler) Available(c *gin.Context) {
	courses, err := h.profileService.Available(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// AddCourse creates a course and enrolls the caller in it.
func (h *ProfileHandler) AddCourse(c *gin.Context) {
	var req models.CourseCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	course, err := h.profileService.AddCourse(c.Request.Context(), currentSession(c).UserID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ProfileHandler) Enroll(c *gin.Context) {
	courseID := c.Param("id")
	h.LogRequest(c, "Enrolling", "course_id", courseID)

	if err := h.profileService.Enroll(c.Request.Context(), currentSession(c).UserID, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Enrolled"})
}

func (h *ProfileHandler) Drop(c *gin.Context) {
	courseID := c.Param("id")
	h.LogRequest(c, "Dropping course", "course_id", courseID)

	if err := h.profileService.Drop(c.Request.Context(), currentSession(c).UserID, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Course dropped"})
}
