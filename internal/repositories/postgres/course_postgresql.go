package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type courseRepository struct {
	baseRepository
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &courseRepository{baseRepository{db: db}}
}

var courseSortColumns = map[string]string{
	"code":       "code",
	"name":       "name",
	"instructor": "instructor",
	"credits":    "credits",
}

// ===== CATALOG =====

func (r *courseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(course).Error, "create course")
}

func (r *courseRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}
	return &course, nil
}

func (r *courseRepository) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	var course models.Course
	err := r.getDB(tx).WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&course).Error
	if err != nil {
		return nil, handleDBError(err, "get course by code")
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Course{})
	query = applySearch(query, filters.Query, "code", "name", "instructor")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	var courses []*models.Course
	query = applyPaginationAndSorting(query, filters.ListOptions, courseSortColumns, "code ASC")
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}
	return courses, total, nil
}

func (r *courseRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).Model(&models.Course{}).Count(&count).Error
	return count, handleDBError(err, "count courses")
}

// ===== ENROLLMENT =====

func (r *courseRepository) ListEnrolled(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("courses.code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, handleDBError(err, "list enrolled courses")
	}
	return courses, nil
}

func (r *courseRepository) ListAvailable(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Course, error) {
	db := r.getDB(tx).WithContext(ctx)
	enrolled := db.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", userID)

	var courses []*models.Course
	err := db.Model(&models.Course{}).
		Where("id NOT IN (?)", enrolled).
		Order("code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, handleDBError(err, "list available courses")
	}
	return courses, nil
}

func (r *courseRepository) Enroll(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(enrollment).Error, "enroll")
}

func (r *courseRepository) Drop(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return false, handleDBError(result.Error, "drop enrollment")
	}
	return result.RowsAffected > 0, nil
}

func (r *courseRepository) CountEnrollments(ctx context.Context, tx *gorm.DB, userIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID string
		Count  int64
	}
	err := r.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, handleDBError(err, "count enrollments")
	}
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}

func (r *courseRepository) DeleteEnrollmentsByUser(ctx context.Context, tx *gorm.DB, userID string) error {
	err := r.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Enrollment{}).Error
	return handleDBError(err, "delete enrollments by user")
}
