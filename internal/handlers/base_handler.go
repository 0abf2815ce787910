package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

const (
	sessionKey = "session"

	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string      `json:"error"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// BaseHandler carries what every handler needs: a logger and the shared
// error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

// LogRequest writes a debug line tagged with the caller's user id.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if session := currentSession(c); session != nil {
		args = append(args, "user_id", session.UserID)
	}
	h.log(c).Debug(msg, args...)
}

func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// bindOptionalJSON binds the body when one is sent, whatever its framing.
// An absent or empty body leaves dest untouched.
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// handleServiceError maps service error kinds onto status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var reqErr *services.RequestError
	var transitionErr *services.TransitionError
	var unavailable *services.ServiceUnavailableError

	switch {
	case errors.As(err, &reqErr):
		resp := ErrorResponse{Error: "validation_failed", Message: reqErr.Message}
		if len(reqErr.Fields) > 0 {
			resp.Details = reqErr.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Message: "Invalid username or password"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Authentication required", Redirect: "/login"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "Access denied", Redirect: "/dashboard"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_transition",
			Message: transitionErr.Error(),
			Details: gin.H{"resource_id": transitionErr.ResourceID, "from": transitionErr.From, "to": transitionErr.To},
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.As(err, &unavailable):
		h.log(c).Warn("Dependency unavailable", "service", unavailable.Service, "error", unavailable.Err)
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable", Message: unavailable.Service + " is temporarily unavailable"})
	default:
		h.log(c).Error("Unhandled service error", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal server error"})
	}
}

// currentSession returns the session installed by RequireAuth, if any.
func currentSession(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*auth.Session)
	return session
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return defaultValue
	}
	return value
}

func optionalQuery(c *gin.Context, param string) *string {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		return nil
	}
	return &value
}

// parseListOptions reads page/size/sort_by/sort_order.
func parseListOptions(c *gin.Context) repositories.ListOptions {
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := parseIntQuery(c, "size", defaultPageSize)
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	return repositories.ListOptions{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}
