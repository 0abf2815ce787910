package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

// multipartOverhead is allowed on top of the file limit for form fields and
// part headers.
const multipartOverhead = 1 << 20

type ResourceHandler struct {
	BaseHandler
	resourceService services.ResourceService
	maxUploadSize   int64
}

func NewResourceHandler(resourceService services.ResourceService, maxUploadSize int64, logger utils.Logger) *ResourceHandler {
	return &ResourceHandler{
		BaseHandler:     NewBaseHandler(logger),
		resourceService: resourceService,
		maxUploadSize:   maxUploadSize,
	}
}

// Submit uploads a resource for review
// @Summary Submit resource
// @Description Accepts multipart/form-data (title, description, type, course, optional file) or JSON without a file. The resource starts pending.
// @Tags resources
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.Resource
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /resources [post]
func (h *ResourceHandler) Submit(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	}

	var req models.ResourceSubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	var upload *services.FileUpload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.bindError(c, err)
			return
		default:
			file, err := fh.Open()
			if err != nil {
				h.bindError(c, err)
				return
			}
			defer file.Close()
			upload = fileUpload(fh, file)
		}
	}

	h.LogRequest(c, "Submitting resource", "title", req.Title, "has_file", upload != nil)

	resource, err := h.resourceService.Submit(c.Request.Context(), currentSession(c), &req, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

func fileUpload(fh *multipart.FileHeader, file multipart.File) *services.FileUpload {
	return &services.FileUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	}
}

func (h *ResourceHandler) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: fmt.Sprintf("Upload exceeds the %d byte limit", h.maxUploadSize),
		})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: "Invalid request payload",
		Details: err.Error(),
	})
}

// Browse lists approved resources
// @Summary Browse resources
// @Tags resources
// @Produce json
// @Param q query string false "Search title, description and course code"
// @Param type query string false "pdf, video or document"
// @Param course query string false "Course code"
// @Success 200 {object} services.ResourceListResponse
// @Router /resources [get]
func (h *ResourceHandler) Browse(c *gin.Context) {
	resp, err := h.resourceService.Browse(c.Request.Context(), parseResourceFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) Facets(c *gin.Context) {
	facets, err := h.resourceService.Facets(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

// Mine lists the caller's own submissions in every status.
func (h *ResourceHandler) Mine(c *gin.Context) {
	resp, err := h.resourceService.ListMine(c.Request.Context(), currentSession(c), parseResourceFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.resourceService.Get(c.Request.Context(), c.Param("id"), currentSession(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// Download streams the attached file
// @Summary Download resource file
// @Tags resources
// @Produce octet-stream
// @Param id path string true "Resource ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /resources/{id}/file [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	resource, body, err := h.resourceService.OpenFile(c.Request.Context(), c.Param("id"), currentSession(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer body.Close()

	contentType := "application/octet-stream"
	if resource.ContentType != nil && *resource.ContentType != "" {
		contentType = *resource.ContentType
	}
	name := resource.ID
	if resource.FileName != nil {
		name = *resource.FileName
	}

	c.DataFromReader(http.StatusOK, resource.FileSize, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

// ===== ADMIN =====

func (h *ResourceHandler) Pending(c *gin.Context) {
	resp, err := h.resourceService.ListPending(c.Request.Context(), parseResourceFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) Approved(c *gin.Context) {
	resp, err := h.resourceService.ListApproved(c.Request.Context(), parseResourceFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) Stats(c *gin.Context) {
	stats, err := h.resourceService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ResourceHandler) Reviews(c *gin.Context) {
	reviews, err := h.resourceService.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Approve moves a pending resource to approved
// @Summary Approve resource
// @Tags admin
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} models.Resource
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/resources/{id}/approve [post]
func (h *ResourceHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Approving resource", "resource_id", id)

	resource, err := h.resourceService.Approve(c.Request.Context(), id, currentSession(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// Reject moves a pending resource to rejected. The body is optional.
func (h *ResourceHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Rejecting resource", "resource_id", id)

	var req models.ResourceDecisionRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	resource, err := h.resourceService.Reject(c.Request.Context(), id, currentSession(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func parseResourceFilters(c *gin.Context) repositories.ResourceFilters {
	filters := repositories.ResourceFilters{
		Query:       c.Query("q"),
		ListOptions: parseListOptions(c),
	}
	// Course codes are stored upper-cased.
	if course := optionalQuery(c, "course"); course != nil {
		code := strings.ToUpper(*course)
		filters.CourseCode = &code
	}
	if t := optionalQuery(c, "type"); t != nil {
		resourceType := models.ResourceType(strings.ToLower(*t))
		filters.Type = &resourceType
	}
	return filters
}
