package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

// PostgreSQLRepository implements repositories.Repository on gorm. The name
// is historical; the same code runs on the sqlite dialect.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager
	identity     repositories.IdentityProvider

	user       repositories.UserRepository
	session    repositories.SessionRepository
	resource   repositories.ResourceRepository
	note       repositories.NoteRepository
	attendance repositories.AttendanceRepository
	schedule   repositories.ScheduleRepository
	course     repositories.CourseRepository
	dashboard  repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	Identity    repositories.IdentityProvider
}

// NewPostgreSQLRepository wires every sub-repository onto one connection.
func NewPostgreSQLRepository(config RepositoryConfig) *PostgreSQLRepository {
	return newRepository(config.DB, config.RedisClient, cache.NewCacheManager(config.RedisClient), config.Identity)
}

func newRepository(db *gorm.DB, redisClient *redis.Client, cm *cache.CacheManager, identity repositories.IdentityProvider) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cm,
		identity:     identity,
		user:         NewUserPostgreSQL(db, cm),
		session:      NewSessionPostgreSQL(db),
		resource:     NewResourcePostgreSQL(db),
		note:         NewNotePostgreSQL(db),
		attendance:   NewAttendancePostgreSQL(db),
		schedule:     NewSchedulePostgreSQL(db),
		course:       NewCoursePostgreSQL(db),
		dashboard:    NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Session() repositories.SessionRepository       { return r.session }
func (r *PostgreSQLRepository) Identity() repositories.IdentityProvider       { return r.identity }
func (r *PostgreSQLRepository) Resource() repositories.ResourceRepository     { return r.resource }
func (r *PostgreSQLRepository) Note() repositories.NoteRepository             { return r.note }
func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository { return r.attendance }
func (r *PostgreSQLRepository) Schedule() repositories.ScheduleRepository     { return r.schedule }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository         { return r.course }
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository   { return r.dashboard }

// Cache exposes the cache manager so services can share it.
func (r *PostgreSQLRepository) Cache() *cache.CacheManager { return r.cacheManager }

// WithTransaction executes fn with a repository bound to a single transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.redisClient, r.cacheManager, r.identity))
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}
	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	var errs []error

	if sqlDB, err := r.db.DB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   *PostgreSQLRepository
}

func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize verifies connectivity and builds the repository.
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	if rm.config.Identity == nil {
		return fmt.Errorf("identity provider is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if err := rm.config.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// Cache returns the shared cache manager. Valid after Initialize.
func (rm *RepositoryManager) Cache() *cache.CacheManager {
	if rm.repo == nil {
		return cache.NewCacheManager(nil)
	}
	return rm.repo.cacheManager
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
