package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type userRepository struct {
	baseRepository
	cache *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.UserRepository {
	return &userRepository{baseRepository: baseRepository{db: db}, cache: cm}
}

var userSortColumns = map[string]string{
	"full_name":  "full_name",
	"email":      "email",
	"created_at": "created_at",
	"role":       "role",
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	// Inside a transaction the caller needs the row it is about to change.
	if tx == nil {
		var cached models.User
		if err := r.cache.User.Get(ctx, "id:"+id, &cached); err == nil {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	if tx == nil {
		cache.SafeSet(ctx, r.cache.User, "id:"+id, &user, cache.UserCacheConfig.TTL)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, tx *gorm.DB, identifier string) (*models.User, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))

	var user models.User
	err := r.getDB(tx).WithContext(ctx).
		Where("LOWER(username) = ? OR email = ?", ident, ident).
		First(&user).Error
	if err != nil {
		return nil, handleDBError(err, "get user by login")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := r.getDB(tx).WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID string) (bool, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user email")
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check username")
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check user id")
	}
	return count > 0, nil
}

// Update writes profile fields only. Role, credentials and identity links have
// their own write paths.
func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := r.getDB(tx).WithContext(ctx).Model(user).
		Select("full_name", "email", "student_id", "phone", "address", "updated_at").
		Updates(user).Error
	if err != nil {
		return handleDBError(err, "update user")
	}
	cache.InvalidateUserCache(ctx, r.cache, user.ID)
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) error {
	result := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return handleDBError(result.Error, "update user role")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user role")
	}
	cache.InvalidateUserCache(ctx, r.cache, id)
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	err := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	return handleDBError(err, "touch last login")
}

// Delete removes the row permanently so the email can be registered again.
func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := r.getDB(tx).WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete user")
	}
	cache.InvalidateUserCache(ctx, r.cache, id)
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	query = applySearch(query, filters.Query, "full_name", "email", "username", "COALESCE(student_id, '')")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	var users []*models.User
	query = applyPaginationAndSorting(query, filters.ListOptions, userSortColumns, "created_at ASC, id ASC")
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}
	return users, total, nil
}

func (r *userRepository) CountByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error) {
	var rows []struct {
		Role  models.UserRole
		Count int64
	}
	err := r.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, handleDBError(err, "count users by role")
	}

	out := make(map[models.UserRole]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
