package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
)

// ===== FILTERS =====

// ListOptions is shared pagination and ordering. A zero Limit means no limit.
type ListOptions struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type ResourceFilters struct {
	Status      *models.ResourceStatus `json:"status"`
	SubmitterID *string                `json:"submitter_id"`
	Type        *models.ResourceType   `json:"type"`
	CourseCode  *string                `json:"course_code"`
	Query       string                 `json:"query"` // title, description, course code
	ListOptions
}

type NoteFilters struct {
	OwnerID  string  `json:"owner_id"`
	Category *string `json:"category"`
	Query    string  `json:"query"` // title, content
	ListOptions
}

type AttendanceFilters struct {
	StudentID  *string                  `json:"student_id"`
	CourseCode *string                  `json:"course_code"`
	Status     *models.AttendanceStatus `json:"status"`
	DateFrom   *time.Time               `json:"date_from"`
	DateTo     *time.Time               `json:"date_to"`
	Query      string                   `json:"query"` // course code, course name
	ListOptions
}

type ScheduleFilters struct {
	Day        *string `json:"day"`
	CourseCode *string `json:"course_code"`
	Query      string  `json:"query"` // course, code, instructor, room
}

type CourseFilters struct {
	Query string `json:"query"` // code, name, instructor
	ListOptions
}

type UserFilters struct {
	Role  *models.UserRole `json:"role"`
	Query string           `json:"query"` // full name, email, student id, username
	ListOptions
}

// ResourceDecision carries the fields written by a status transition.
type ResourceDecision struct {
	DecidedBy string
	DecidedAt time.Time
	Note      *string
}

// ===== REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	// GetByLogin looks a user up by username or email, case-insensitively.
	GetByLogin(ctx context.Context, tx *gorm.DB, identifier string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID string) (bool, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) error
	TouchLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	CountByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.SessionRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SessionRecord, error)
	Revoke(ctx context.Context, tx *gorm.DB, id string, at time.Time) error
	RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID string, at time.Time) ([]string, error)
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Resource, error)
	List(ctx context.Context, tx *gorm.DB, filters ResourceFilters) ([]*models.Resource, int64, error)
	// Transition moves a resource from one status to another only if it is
	// currently in from. It reports whether a row changed.
	Transition(ctx context.Context, tx *gorm.DB, id string, from, to models.ResourceStatus, decision ResourceDecision) (bool, error)
	AddReview(ctx context.Context, tx *gorm.DB, review *models.ResourceReview) error
	ListReviews(ctx context.Context, tx *gorm.DB, resourceID string) ([]*models.ResourceReview, error)
	IncrementViews(ctx context.Context, tx *gorm.DB, id string) error
	IncrementDownloads(ctx context.Context, tx *gorm.DB, id string) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ResourceStatus]int64, error)
	// ApprovedFacets returns the distinct types and course codes of approved resources.
	ApprovedFacets(ctx context.Context, tx *gorm.DB) ([]models.ResourceType, []string, error)
}

type NoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, note *models.Note) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Note, error)
	Update(ctx context.Context, tx *gorm.DB, note *models.Note) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters NoteFilters) ([]*models.Note, int64, error)
	Categories(ctx context.Context, tx *gorm.DB, ownerID string) ([]string, error)
	CountByOwner(ctx context.Context, tx *gorm.DB, ownerID string) (int64, error)
	DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID string) error
}

type AttendanceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AttendanceRecord, error)
	Update(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters AttendanceFilters) ([]*models.AttendanceRecord, int64, error)
	DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID string) error
}

type ScheduleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ClassSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ClassSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.ClassSession) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	// List returns sessions ordered by weekday then start time.
	List(ctx context.Context, tx *gorm.DB, filters ScheduleFilters) ([]*models.ClassSession, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	ListEnrolled(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Course, error)
	ListAvailable(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Course, error)
	// Enroll returns ErrDuplicate when the user is already enrolled.
	Enroll(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	// Drop reports whether an enrollment existed and was removed.
	Drop(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error)
	CountEnrollments(ctx context.Context, tx *gorm.DB, userIDs []string) (map[string]int64, error)
	DeleteEnrollmentsByUser(ctx context.Context, tx *gorm.DB, userID string) error
}

// IdentitySpec is what the external identity service needs to create an account.
type IdentitySpec struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

// IdentityProvider is the managed identity service accounts are created in.
type IdentityProvider interface {
	// CreateIdentity returns the provider's id for the new account.
	CreateIdentity(ctx context.Context, spec IdentitySpec) (string, error)
	DeleteIdentity(ctx context.Context, authID string) error
	Name() string
}
