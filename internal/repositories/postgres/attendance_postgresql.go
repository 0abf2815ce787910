package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type attendanceRepository struct {
	baseRepository
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendanceRepository{baseRepository{db: db}}
}

var attendanceSortColumns = map[string]string{
	"date":        "date",
	"course_code": "course_code",
	"status":      "status",
}

func (r *attendanceRepository) Create(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(record).Error, "create attendance record")
}

func (r *attendanceRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, handleDBError(err, "get attendance record")
	}
	return &record, nil
}

func (r *attendanceRepository) Update(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Save(record).Error, "update attendance record")
}

func (r *attendanceRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := r.getDB(tx).WithContext(ctx).Where("id = ?", id).Delete(&models.AttendanceRecord{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete attendance record")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete attendance record")
	}
	return nil
}

func (r *attendanceRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.AttendanceRecord{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	query = applySearch(query, filters.Query, "course_code", "course_name")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count attendance records")
	}

	var records []*models.AttendanceRecord
	query = applyPaginationAndSorting(query, filters.ListOptions, attendanceSortColumns, "date DESC, course_code ASC, id ASC")
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, handleDBError(err, "list attendance records")
	}
	return records, total, nil
}

func (r *attendanceRepository) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID string) error {
	err := r.getDB(tx).WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.AttendanceRecord{}).Error
	return handleDBError(err, "delete attendance by student")
}
