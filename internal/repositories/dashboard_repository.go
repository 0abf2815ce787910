package repositories

import (
	"context"

	"gorm.io/gorm"
)

// DashboardRepository computes the admin overview counters.
type DashboardRepository interface {
	GetSystemStats(ctx context.Context, tx *gorm.DB) (*SystemStats, error)
}

// SystemStats is always derived from stored data, never kept as counters.
type SystemStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalStudents    int64 `json:"total_students"`
	TotalAdmins      int64 `json:"total_admins"`
	TotalResources   int64 `json:"total_resources"`
	PendingApprovals int64 `json:"pending_approvals"`
	ApprovedCount    int64 `json:"approved_resources"`
	RejectedCount    int64 `json:"rejected_resources"`
	TotalCourses     int64 `json:"total_courses"`
	TotalEnrollments int64 `json:"total_enrollments"`
}
