package repositories

import "context"

// Repository aggregates every repository the portal uses.
type Repository interface {
	// Accounts
	User() UserRepository
	Session() SessionRepository
	Identity() IdentityProvider

	// Approval workflow
	Resource() ResourceRepository

	// Content panels
	Note() NoteRepository
	Attendance() AttendanceRepository
	Schedule() ScheduleRepository
	Course() CourseRepository

	// Admin dashboard
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
