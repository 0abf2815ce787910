package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type dashboardRepository struct {
	baseRepository
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{baseRepository{db: db}}
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) GetSystemStats(ctx context.Context, tx *gorm.DB) (*repositories.SystemStats, error) {
	db := r.getDB(tx).WithContext(ctx)
	stats := &repositories.SystemStats{}

	var roles []struct {
		Role  models.UserRole
		Count int64
	}
	if err := db.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	for _, row := range roles {
		stats.TotalUsers += row.Count
		switch row.Role {
		case models.RoleStudent:
			stats.TotalStudents = row.Count
		case models.RoleAdmin:
			stats.TotalAdmins = row.Count
		}
	}

	var statuses []struct {
		Status models.ResourceStatus
		Count  int64
	}
	if err := db.Model(&models.Resource{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}
	for _, row := range statuses {
		stats.TotalResources += row.Count
		switch row.Status {
		case models.ResourcePending:
			stats.PendingApprovals = row.Count
		case models.ResourceApproved:
			stats.ApprovedCount = row.Count
		case models.ResourceRejected:
			stats.RejectedCount = row.Count
		}
	}

	if err := db.Model(&models.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := db.Model(&models.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return stats, nil
}
