package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

// ===== AUTH DTOs =====

// SessionUser is the identity shape returned to the browser.
type SessionUser struct {
	ID        string          `json:"id"`
	Username  string          `json:"username,omitempty"`
	FullName  string          `json:"fullName"`
	Email     string          `json:"email"`
	StudentID *string         `json:"studentId,omitempty"`
	Role      models.UserRole `json:"role"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	User      *SessionUser `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type SignupResponse struct {
	Message string       `json:"message"`
	User    *SessionUser `json:"user"`
}

// ClientInfo is recorded on the session row for auditing.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// ===== RESOURCE DTOs =====

// FileUpload is an optional file attached to a submission.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ResourceListResponse struct {
	Resources []*models.Resource `json:"resources"`
	Total     int64              `json:"total"`
}

type ResourceFacets struct {
	Types   []models.ResourceType `json:"types"`
	Courses []string              `json:"courses"`
}

type ResourceStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// ===== NOTE DTOs =====

type NoteResponse struct {
	*models.Note
	ContentHTML string `json:"content_html,omitempty"`
}

type NoteListResponse struct {
	Notes      []*models.Note `json:"notes"`
	Total      int64          `json:"total"`
	Categories []string       `json:"categories"`
}

// ===== ATTENDANCE DTOs =====

type AttendanceListResponse struct {
	Records []*models.AttendanceRecord `json:"records"`
	Total   int64                      `json:"total"`
}

type CourseAttendance struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Late       int    `json:"late"`
	Percentage int    `json:"percentage"`
}

type AttendanceStats struct {
	StudentID  string              `json:"student_id,omitempty"`
	Total      int                 `json:"total"`
	Present    int                 `json:"present"`
	Absent     int                 `json:"absent"`
	Late       int                 `json:"late"`
	Percentage int                 `json:"percentage"`
	Courses    []*CourseAttendance `json:"courses"`
}

// ===== SCHEDULE DTOs =====

type DaySchedule struct {
	Day     string                 `json:"day"`
	Classes []*models.ClassSession `json:"classes"`
}

// ===== PROFILE DTOs =====

type ProfileResponse struct {
	*models.User
	EnrolledCourses []*models.Course `json:"enrolled_courses"`
	TotalCredits    int              `json:"total_credits"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
}

// ===== DASHBOARD / ADMIN DTOs =====

type DashboardSummary struct {
	Name              string `json:"name"`
	Role              string `json:"role"`
	AttendanceRate    int    `json:"attendance_rate"`
	ResourcesAccessed int64  `json:"resources_accessed"`
	NotesCreated      int64  `json:"notes_created"`
	EnrolledCourses   int    `json:"enrolled_courses"`
}

type AdminUserView struct {
	*models.User
	EnrollmentCount int64 `json:"enrollment_count"`
}

type UserListResponse struct {
	Users []*AdminUserView `json:"users"`
	Total int64            `json:"total"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest, client ClientInfo) (*LoginResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*SignupResponse, error)
	Logout(ctx context.Context, session *auth.Session) error
	// Authenticate verifies a bearer token and its server-side session.
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
	Me(ctx context.Context, session *auth.Session) (*SessionUser, error)
}

type ResourceService interface {
	Submit(ctx context.Context, session *auth.Session, req *models.ResourceSubmitRequest, file *FileUpload) (*models.Resource, error)
	Approve(ctx context.Context, id string, admin *auth.Session) (*models.Resource, error)
	Reject(ctx context.Context, id string, admin *auth.Session, req *models.ResourceDecisionRequest) (*models.Resource, error)

	Browse(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error)
	Facets(ctx context.Context) (*ResourceFacets, error)
	ListMine(ctx context.Context, session *auth.Session, filters repositories.ResourceFilters) (*ResourceListResponse, error)
	ListPending(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error)
	ListApproved(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error)
	Reviews(ctx context.Context, id string) ([]*models.ResourceReview, error)
	Stats(ctx context.Context) (*ResourceStats, error)

	Get(ctx context.Context, id string, session *auth.Session) (*models.Resource, error)
	OpenFile(ctx context.Context, id string, session *auth.Session) (*models.Resource, io.ReadCloser, error)
}

type NoteService interface {
	List(ctx context.Context, ownerID string, filters repositories.NoteFilters) (*NoteListResponse, error)
	Get(ctx context.Context, ownerID, id string) (*NoteResponse, error)
	Create(ctx context.Context, ownerID string, req *models.NoteRequest) (*models.Note, error)
	Update(ctx context.Context, ownerID, id string, req *models.NoteRequest) (*models.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
	Categories(ctx context.Context, ownerID string) ([]string, error)
}

type AttendanceService interface {
	List(ctx context.Context, session *auth.Session, filters repositories.AttendanceFilters) (*AttendanceListResponse, error)
	Stats(ctx context.Context, session *auth.Session, studentID string) (*AttendanceStats, error)
	Export(ctx context.Context, session *auth.Session, studentID string, w io.Writer) error
	Create(ctx context.Context, req *models.AttendanceRequest) (*models.AttendanceRecord, error)
	Update(ctx context.Context, id string, req *models.AttendanceRequest) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
}

type ScheduleService interface {
	List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.ClassSession, error)
	Week(ctx context.Context) ([]*DaySchedule, error)
	Upcoming(ctx context.Context, now time.Time) ([]*models.ClassSession, error)
	Create(ctx context.Context, req *models.ClassSessionRequest) (*models.ClassSession, error)
	Update(ctx context.Context, id string, req *models.ClassSessionRequest) (*models.ClassSession, error)
	Delete(ctx context.Context, id string) error
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*ProfileResponse, error)
	Update(ctx context.Context, userID string, req *models.ProfileUpdateRequest) (*ProfileResponse, error)
	Dashboard(ctx context.Context, session *auth.Session) (*DashboardSummary, error)

	ListCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	Enrolled(ctx context.Context, userID string) ([]*models.Course, error)
	Available(ctx context.Context, userID string) ([]*models.Course, error)
	Enroll(ctx context.Context, userID, courseID string) error
	Drop(ctx context.Context, userID, courseID string) error
	// AddCourse creates a catalog course and enrolls userID in it.
	AddCourse(ctx context.Context, userID string, req *models.CourseCreateRequest) (*models.Course, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	UpdateRole(ctx context.Context, actor *auth.Session, userID string, req *models.RoleUpdateRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actor *auth.Session, userID string, confirm bool) error
	Stats(ctx context.Context) (*repositories.SystemStats, error)
}

// ServiceManager owns every service and the shared dependencies behind them.
type ServiceManager interface {
	Auth() AuthService
	Resource() ResourceService
	Note() NoteService
	Attendance() AttendanceService
	Schedule() ScheduleService
	Profile() ProfileService
	Admin() AdminService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
