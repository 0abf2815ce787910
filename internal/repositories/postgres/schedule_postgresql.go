package postgres

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type scheduleRepository struct {
	baseRepository
}

func NewSchedulePostgreSQL(db *gorm.DB) repositories.ScheduleRepository {
	return &scheduleRepository{baseRepository{db: db}}
}

func (r *scheduleRepository) Create(ctx context.Context, tx *gorm.DB, session *models.ClassSession) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(session).Error, "create class session")
}

func (r *scheduleRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ClassSession, error) {
	var session models.ClassSession
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, handleDBError(err, "get class session")
	}
	return &session, nil
}

func (r *scheduleRepository) Update(ctx context.Context, tx *gorm.DB, session *models.ClassSession) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Save(session).Error, "update class session")
}

func (r *scheduleRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := r.getDB(tx).WithContext(ctx).Where("id = ?", id).Delete(&models.ClassSession{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete class session")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete class session")
	}
	return nil
}

func (r *scheduleRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ScheduleFilters) ([]*models.ClassSession, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.ClassSession{})
	if filters.Day != nil {
		query = query.Where("day = ?", *filters.Day)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}
	query = applySearch(query, filters.Query, "course", "course_code", "instructor", "room")

	var sessions []*models.ClassSession
	if err := query.Order("start_time ASC, id ASC").Find(&sessions).Error; err != nil {
		return nil, handleDBError(err, "list class sessions")
	}

	// Weekday names do not sort alphabetically, so order by position in the week.
	sort.SliceStable(sessions, func(i, j int) bool {
		return weekdayIndex(sessions[i].Day) < weekdayIndex(sessions[j].Day)
	})
	return sessions, nil
}

func weekdayIndex(day string) int {
	for i, d := range models.Weekdays {
		if d == day {
			return i
		}
	}
	return len(models.Weekdays)
}
