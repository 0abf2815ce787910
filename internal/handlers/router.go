package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/services"
	"github.com/SAP-F-2025/learning-portal-service/internal/utils"
)

const serviceName = "learning-portal-service"

type HandlerManager struct {
	serviceManager services.ServiceManager
	metrics        *metrics.Metrics
	logger         utils.Logger

	authHandler       *AuthHandler
	resourceHandler   *ResourceHandler
	noteHandler       *NoteHandler
	attendanceHandler *AttendanceHandler
	scheduleHandler   *ScheduleHandler
	profileHandler    *ProfileHandler
	dashboardHandler  *DashboardHandler
	userHandler       *UserHandler
	authMiddleware    *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	m *metrics.Metrics,
	logger utils.Logger,
	maxUploadSize int64,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:    serviceManager,
		metrics:           m,
		logger:            logger,
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		resourceHandler:   NewResourceHandler(serviceManager.Resource(), maxUploadSize, logger),
		noteHandler:       NewNoteHandler(serviceManager.Note(), logger),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), logger),
		scheduleHandler:   NewScheduleHandler(serviceManager.Schedule(), logger),
		profileHandler:    NewProfileHandler(serviceManager.Profile(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Profile(), serviceManager.Admin(), logger),
		userHandler:       NewUserHandler(serviceManager.Admin(), logger),
		authMiddleware:    NewAuthMiddleware(serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAdmin := hm.authMiddleware.RequireRole(models.RoleAdmin)

	// Public auth endpoints, also reachable at the paths the login page posts to.
	router.POST("/login", hm.authHandler.Login)
	router.POST("/signup", hm.authHandler.Signup)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", hm.authHandler.Login)
		v1.POST("/auth/signup", hm.authHandler.Signup)
	}

	// Everything below requires a verified session.
	api := v1.Group("")
	api.Use(hm.authMiddleware.RequireAuth())
	{
		api.POST("/auth/logout", hm.authHandler.Logout)
		api.GET("/auth/me", hm.authHandler.Me)
		api.GET("/navigation", hm.authHandler.Navigation)
		api.GET("/dashboard", hm.dashboardHandler.GetSummary)

		notes := api.Group("/notes")
		{
			notes.GET("", hm.noteHandler.List)
			notes.POST("", hm.noteHandler.Create)
			notes.GET("/categories", hm.noteHandler.Categories)
			notes.GET("/:id", hm.noteHandler.Get)
			notes.PUT("/:id", hm.noteHandler.Update)
			notes.DELETE("/:id", hm.noteHandler.Delete)
		}

		attendance := api.Group("/attendance")
		{
			attendance.GET("", hm.attendanceHandler.List)
			attendance.GET("/stats", hm.attendanceHandler.Stats)
			attendance.GET("/export", hm.attendanceHandler.Export)

			attendance.POST("", requireAdmin, hm.attendanceHandler.Create)
			attendance.PUT("/:id", requireAdmin, hm.attendanceHandler.Update)
			attendance.DELETE("/:id", requireAdmin, hm.attendanceHandler.Delete)
		}

		schedule := api.Group("/schedule")
		{
			schedule.GET("", hm.scheduleHandler.List)
			schedule.GET("/week", hm.scheduleHandler.Week)
			schedule.GET("/upcoming", hm.scheduleHandler.Upcoming)

			schedule.POST("", requireAdmin, hm.scheduleHandler.Create)
			schedule.PUT("/:id", requireAdmin, hm.scheduleHandler.Update)
			schedule.DELETE("/:id", requireAdmin, hm.scheduleHandler.Delete)
		}

		api.GET("/profile", hm.profileHandler.GetProfile)
		api.PUT("/profile", hm.profileHandler.UpdateProfile)

		courses := api.Group("/courses")
		{
			courses.GET("", hm.profileHandler.ListCourses)
			courses.POST("", hm.profileHandler.AddCourse)
			courses.GET("/enrolled", hm.profileHandler.Enrolled)
			courses.GET("/available", hm.profileHandler.Available)
			courses.POST("/:id/enroll", hm.profileHandler.Enroll)
			courses.DELETE("/:id/enroll", hm.profileHandler.Drop)
		}

		resources := api.Group("/resources")
		{
			resources.GET("", hm.resourceHandler.Browse)
			resources.POST("", hm.resourceHandler.Submit)
			resources.GET("/facets", hm.resourceHandler.Facets)
			resources.GET("/mine", hm.resourceHandler.Mine)
			resources.GET("/:id", hm.resourceHandler.Get)
			resources.GET("/:id/file", hm.resourceHandler.Download)
		}

		// Admin routes - the role check runs before any admin handler
		admin := api.Group("/admin")
		admin.Use(requireAdmin)
		{
			admin.GET("/stats", hm.dashboardHandler.GetSystemStats)

			admin.GET("/resources/pending", hm.resourceHandler.Pending)
			admin.GET("/resources/approved", hm.resourceHandler.Approved)
			admin.GET("/resources/stats", hm.resourceHandler.Stats)
			admin.GET("/resources/:id/reviews", hm.resourceHandler.Reviews)
			admin.POST("/resources/:id/approve", hm.resourceHandler.Approve)
			admin.POST("/resources/:id/reject", hm.resourceHandler.Reject)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.PUT("/users/:id/role", hm.userHandler.UpdateRole)
			admin.DELETE("/users/:id", hm.userHandler.DeleteUser)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
	router.GET("/ready", hm.ready)

	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}
}

func (hm *HandlerManager) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}
