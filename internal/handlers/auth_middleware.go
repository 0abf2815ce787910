package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

// AuthMiddleware guards protected routes with server-verified bearer tokens.
type AuthMiddleware struct {
	authService services.AuthService
	logger      utils.Logger
}

func NewAuthMiddleware(authService services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, logger: logger}
}

// RequireAuth verifies the bearer token and installs the session. Requests
// without a valid session never reach the handler.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "authorization header missing or malformed")
			return
		}

		session, err := am.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				abortUnauthorized(c, "invalid or expired session")
				return
			}
			utils.GetLogger(c, am.logger).Error("Session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "service_unavailable",
				Message: "Unable to verify session",
			})
			return
		}

		c.Set(sessionKey, session)
		c.Set("user_id", session.UserID)
		c.Set("user_role", session.Role)
		c.Next()
	}
}

// RequireRole admits sessions allowed into the area guarded by role.
func (am *AuthMiddleware) RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !auth.IsAuthorized(session, role) {
			utils.GetLogger(c, am.logger).Warn("Role check failed", "user_id", session.UserID, "role", session.Role, "required", role)
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:    "forbidden",
				Message:  "insufficient permissions, required role: " + string(role),
				Redirect: "/dashboard",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:    "unauthorized",
		Message:  message,
		Redirect: "/login",
	})
}
