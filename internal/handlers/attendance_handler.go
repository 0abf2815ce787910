package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
	}
}

// List returns attendance records. Students always see their own; admins
// may pass student_id.
func (h *AttendanceHandler) List(c *gin.Context) {
	filters := repositories.AttendanceFilters{
		StudentID:   optionalQuery(c, "student_id"),
		CourseCode:  optionalQuery(c, "course"),
		Query:       c.Query("q"),
		ListOptions: parseListOptions(c),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := models.AttendanceStatus(strings.ToLower(*status))
		filters.Status = &s
	}
	var ok bool
	if filters.DateFrom, ok = h.parseDateQuery(c, "from"); !ok {
		return
	}
	if filters.DateTo, ok = h.parseDateQuery(c, "to"); !ok {
		return
	}

	resp, err := h.attendanceService.List(c.Request.Context(), currentSession(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) Stats(c *gin.Context) {
	stats, err := h.attendanceService.Stats(c.Request.Context(), currentSession(c), c.Query("student_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export
// @Summary Export attendance as XLSX
// @Tags attendance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param student_id query string false "Student (admins only)"
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	// Rendered into memory first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.attendanceService.Export(c.Request.Context(), currentSession(c), c.Query("student_id"), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	var req models.AttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.attendanceService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	var req models.AttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.attendanceService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendanceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AttendanceHandler) parseDateQuery(c *gin.Context, param string) (*time.Time, bool) {
	raw := optionalQuery(c, param)
	if raw == nil {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid " + param + " date, expected YYYY-MM-DD",
		})
		return nil, false
	}
	return &t, true
}
