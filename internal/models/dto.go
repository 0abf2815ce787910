package models

// ===== AUTH =====

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type SignupRequest struct {
	FullName     string `json:"fullName" validate:"notblank,max=100"`
	Email        string `json:"email" validate:"notblank,email,max=255"`
	Password     string `json:"password" validate:"notblank,min=6,max=72"`
	StudentID    string `json:"studentId" validate:"omitempty,max=50"`
	UseCustomID  bool   `json:"useCustomId"`
	CustomUserID string `json:"customUserId" validate:"required_if=UseCustomID true,max=255"`
}

// ===== RESOURCES =====

type ResourceSubmitRequest struct {
	Title       string       `json:"title" form:"title" validate:"notblank,max=200"`
	Description string       `json:"description" form:"description" validate:"notblank,max=5000"`
	Type        ResourceType `json:"type" form:"type" validate:"resource_type"`
	CourseCode  string       `json:"course" form:"course" validate:"course_code"`
}

type ResourceDecisionRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// ===== NOTES =====

type NoteRequest struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Content  string `json:"content" validate:"notblank,max=20000"`
	Category string `json:"category" validate:"notblank,max=100"`
}

// ===== ATTENDANCE =====

type AttendanceRequest struct {
	StudentID  string           `json:"student_id" validate:"notblank"`
	CourseCode string           `json:"course_code" validate:"course_code"`
	CourseName string           `json:"course_name" validate:"notblank,max=200"`
	Date       string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status     AttendanceStatus `json:"status" validate:"attendance_status"`
	Time       *string          `json:"time" validate:"omitempty,clock"`
}

// ===== SCHEDULE =====

type ClassSessionRequest struct {
	Course     string `json:"course" validate:"notblank,max=200"`
	CourseCode string `json:"course_code" validate:"course_code"`
	Day        string `json:"day" validate:"weekday"`
	StartTime  string `json:"start_time" validate:"clock"`
	EndTime    string `json:"end_time" validate:"clock"`
	Room       string `json:"room" validate:"max=50"`
	Instructor string `json:"instructor" validate:"max=100"`
}

// ===== PROFILE / COURSES =====

type ProfileUpdateRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,notblank,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	StudentID *string `json:"student_id" validate:"omitempty,max=50"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
}

type CourseCreateRequest struct {
	Code       string `json:"code" validate:"course_code"`
	Name       string `json:"name" validate:"notblank,max=200"`
	Instructor string `json:"instructor" validate:"notblank,max=100"`
	Credits    int    `json:"credits" validate:"omitempty,min=1,max=12"`
}

// ===== ADMIN =====

type RoleUpdateRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=student admin"`
}
