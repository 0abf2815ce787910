package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

// NoteHandler serves the caller's own notes. Other users' notes answer 404.
type NoteHandler struct {
	BaseHandler
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService, logger utils.Logger) *NoteHandler {
	return &NoteHandler{
		BaseHandler: NewBaseHandler(logger),
		noteService: noteService,
	}
}

func (h *NoteHandler) List(c *gin.Context) {
	filters := repositories.NoteFilters{
		Query:       c.Query("q"),
		Category:    optionalQuery(c, "category"),
		ListOptions: parseListOptions(c),
	}
	resp, err := h.noteService.List(c.Request.Context(), currentSession(c).UserID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NoteHandler) Categories(c *gin.Context) {
	categories, err := h.noteService.Categories(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.noteService.Get(c.Request.Context(), currentSession(c).UserID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req models.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	note, err := h.noteService.Create(c.Request.Context(), currentSession(c).UserID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) Update(c *gin.Context) {
	var req models.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	note, err := h.noteService.Update(c.Request.Context(), currentSession(c).UserID, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.noteService.Delete(c.Request.Context(), currentSession(c).UserID, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
