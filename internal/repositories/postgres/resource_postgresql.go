package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type resourceRepository struct {
	baseRepository
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &resourceRepository{baseRepository{db: db}}
}

var resourceSortColumns = map[string]string{
	"title":        "title",
	"submitted_at": "submitted_at",
	"decided_at":   "decided_at",
	"views":        "views",
	"downloads":    "downloads",
	"course_code":  "course_code",
}

// ===== BASIC CRUD OPERATIONS =====

func (r *resourceRepository) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(resource).Error, "create resource")
}

func (r *resourceRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&resource).Error; err != nil {
		return nil, handleDBError(err, "get resource by id")
	}
	return &resource, nil
}

// ===== QUERY OPERATIONS =====

func (r *resourceRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Resource{})
	query = r.applyResourceFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count resources")
	}

	var resources []*models.Resource
	query = applyPaginationAndSorting(query, filters.ListOptions, resourceSortColumns, "submitted_at DESC, id ASC")
	if err := query.Find(&resources).Error; err != nil {
		return nil, 0, handleDBError(err, "list resources")
	}
	return resources, total, nil
}

func (r *resourceRepository) applyResourceFilters(query *gorm.DB, filters repositories.ResourceFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SubmitterID != nil {
		query = query.Where("submitter_id = ?", *filters.SubmitterID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}
	return applySearch(query, filters.Query, "title", "description", "course_code")
}

// ===== WORKFLOW OPERATIONS =====

// Transition is a compare-and-set on status. Two concurrent deciders cannot
// both succeed because only one UPDATE can match the from-status.
func (r *resourceRepository) Transition(ctx context.Context, tx *gorm.DB, id string, from, to models.ResourceStatus, decision repositories.ResourceDecision) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":        to,
			"decided_at":    decision.DecidedAt,
			"decided_by":    decision.DecidedBy,
			"decision_note": decision.Note,
			"updated_at":    decision.DecidedAt,
		})
	if result.Error != nil {
		return false, handleDBError(result.Error, "transition resource")
	}
	return result.RowsAffected == 1, nil
}

func (r *resourceRepository) AddReview(ctx context.Context, tx *gorm.DB, review *models.ResourceReview) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(review).Error, "add resource review")
}

func (r *resourceRepository) ListReviews(ctx context.Context, tx *gorm.DB, resourceID string) ([]*models.ResourceReview, error) {
	var reviews []*models.ResourceReview
	err := r.getDB(tx).WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, handleDBError(err, "list resource reviews")
	}
	return reviews, nil
}

func (r *resourceRepository) IncrementViews(ctx context.Context, tx *gorm.DB, id string) error {
	return r.increment(ctx, tx, id, "views")
}

func (r *resourceRepository) IncrementDownloads(ctx context.Context, tx *gorm.DB, id string) error {
	return r.increment(ctx, tx, id, "downloads")
}

func (r *resourceRepository) increment(ctx context.Context, tx *gorm.DB, id, column string) error {
	err := r.getDB(tx).WithContext(ctx).Model(&models.Resource{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
	return handleDBError(err, "increment resource "+column)
}

// ===== AGGREGATES =====

func (r *resourceRepository) CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ResourceStatus]int64, error) {
	var rows []struct {
		Status models.ResourceStatus
		Count  int64
	}
	err := r.getDB(tx).WithContext(ctx).Model(&models.Resource{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, handleDBError(err, "count resources by status")
	}

	out := make(map[models.ResourceStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *resourceRepository) ApprovedFacets(ctx context.Context, tx *gorm.DB) ([]models.ResourceType, []string, error) {
	db := r.getDB(tx).WithContext(ctx)

	var types []models.ResourceType
	if err := db.Model(&models.Resource{}).
		Where("status = ?", models.ResourceApproved).
		Distinct().Order("type").
		Pluck("type", &types).Error; err != nil {
		return nil, nil, handleDBError(err, "list resource types")
	}

	var courses []string
	if err := db.Model(&models.Resource{}).
		Where("status = ?", models.ResourceApproved).
		Distinct().Order("course_code").
		Pluck("course_code", &courses).Error; err != nil {
		return nil, nil, handleDBError(err, "list resource courses")
	}

	return types, courses, nil
}
