package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/storage"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	MaxUploadSize int64
	// SeedDemoData loads the demo accounts and panels on first start.
	SeedDemoData bool
}

// Dependencies are the shared collaborators every service is built from.
// Cache, Publisher, Files and Metrics may be nil-backed; services degrade
// rather than fail when an optional dependency is absent.
type Dependencies struct {
	Repo      repositories.Repository
	Tokens    *auth.TokenIssuer
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Files     storage.FileStore
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	authService       AuthService
	resourceService   ResourceService
	noteService       NoteService
	attendanceService AttendanceService
	scheduleService   ScheduleService
	profileService    ProfileService
	adminService      AdminService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &serviceManager{deps: deps, config: config}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Tokens, d.Cache, d.Publisher, d.Metrics, d.Logger, d.Validator)
	sm.resourceService = NewResourceService(d.Repo, d.Files, d.Cache, d.Publisher, d.Metrics, d.Logger, d.Validator, sm.config.MaxUploadSize)
	sm.noteService = NewNoteService(d.Repo, d.Logger, d.Validator)
	sm.attendanceService = NewAttendanceService(d.Repo, d.Logger, d.Validator)
	sm.scheduleService = NewScheduleService(d.Repo, d.Logger, d.Validator)
	sm.profileService = NewProfileService(d.Repo, d.Logger, d.Validator)
	sm.adminService = NewAdminService(d.Repo, d.Cache, d.Publisher, d.Logger, d.Validator, d.Tokens.TTL())

	purged, err := d.Repo.Session().DeleteExpired(ctx, nil, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if purged > 0 {
		d.Logger.Info("Purged expired sessions", "count", purged)
	}

	if sm.config.SeedDemoData {
		if err := SeedDemoData(ctx, d.Repo, d.Logger); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeReady(name string, svc interface{}) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if svc == nil {
		panic(name + " service not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("auth", sm.authService)
	return sm.authService
}

func (sm *serviceManager) Resource() ResourceService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("resource", sm.resourceService)
	return sm.resourceService
}

func (sm *serviceManager) Note() NoteService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("note", sm.noteService)
	return sm.noteService
}

func (sm *serviceManager) Attendance() AttendanceService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("attendance", sm.attendanceService)
	return sm.attendanceService
}

func (sm *serviceManager) Schedule() ScheduleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("schedule", sm.scheduleService)
	return sm.scheduleService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("profile", sm.profileService)
	return sm.profileService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("admin", sm.adminService)
	return sm.adminService
}

// Health and lifecycle

// HealthCheck fails when the database is unreachable or, if Redis is
// configured, when the cache is.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return &ServiceUnavailableError{Service: "repository", Err: err}
	}
	if sm.deps.Cache.Enabled() {
		if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
			return &ServiceUnavailableError{Service: "cache", Err: err}
		}
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if sm.deps.Files != nil {
		if err := sm.deps.Files.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close file store", "error", err)
		}
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
		}
	} else if err := sm.deps.Repo.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
