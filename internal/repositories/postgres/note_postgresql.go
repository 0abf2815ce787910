package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type noteRepository struct {
	baseRepository
}

func NewNotePostgreSQL(db *gorm.DB) repositories.NoteRepository {
	return &noteRepository{baseRepository{db: db}}
}

var noteSortColumns = map[string]string{
	"title":      "title",
	"category":   "category",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *noteRepository) Create(ctx context.Context, tx *gorm.DB, note *models.Note) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(note).Error, "create note")
}

func (r *noteRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Note, error) {
	var note models.Note
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, handleDBError(err, "get note by id")
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, tx *gorm.DB, note *models.Note) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Save(note).Error, "update note")
}

func (r *noteRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := r.getDB(tx).WithContext(ctx).Where("id = ?", id).Delete(&models.Note{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete note")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete note")
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.NoteFilters) ([]*models.Note, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Note{}).
		Where("owner_id = ?", filters.OwnerID)
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	query = applySearch(query, filters.Query, "title", "content")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count notes")
	}

	var notes []*models.Note
	query = applyPaginationAndSorting(query, filters.ListOptions, noteSortColumns, "updated_at DESC, id ASC")
	if err := query.Find(&notes).Error; err != nil {
		return nil, 0, handleDBError(err, "list notes")
	}
	return notes, total, nil
}

func (r *noteRepository) Categories(ctx context.Context, tx *gorm.DB, ownerID string) ([]string, error) {
	var categories []string
	err := r.getDB(tx).WithContext(ctx).Model(&models.Note{}).
		Where("owner_id = ?", ownerID).
		Distinct().Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, handleDBError(err, "list note categories")
	}
	return categories, nil
}

func (r *noteRepository) CountByOwner(ctx context.Context, tx *gorm.DB, ownerID string) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).Model(&models.Note{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, handleDBError(err, "count notes")
}

func (r *noteRepository) DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID string) error {
	err := r.getDB(tx).WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Note{}).Error
	return handleDBError(err, "delete notes by owner")
}
