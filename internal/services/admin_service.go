package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

type adminService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	// sessionTTL bounds how long a revoked session id must stay cached.
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAdminService(
	repo repositories.Repository,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	sessionTTL time.Duration,
) AdminService {
	return &adminService{
		repo:       repo,
		cache:      cm,
		publisher:  publisher,
		logger:     logger,
		validator:  validator,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *adminService) ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := s.repo.Course().CountEnrollments(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	views := make([]*AdminUserView, len(users))
	for i, u := range users {
		views[i] = &AdminUserView{User: u, EnrollmentCount: counts[u.ID]}
	}
	return &UserListResponse{Users: views, Total: total}, nil
}

// UpdateRole changes a user's role and ends their sessions, since issued
// tokens carry the old role.
func (s *adminService) UpdateRole(ctx context.Context, actor *auth.Session, userID string, req *models.RoleUpdateRequest) (*models.User, error) {
	if !auth.IsAuthorized(actor, models.RoleAdmin) {
		return nil, ErrForbidden
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}
	if actor.UserID == userID {
		return nil, fmt.Errorf("cannot change your own role: %w", ErrForbidden)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldRole := user.Role
	if oldRole == req.Role {
		return user, nil
	}

	var revoked []string
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().UpdateRole(ctx, nil, userID, req.Role); err != nil {
			if repositories.IsNotFoundError(err) {
				return notFound("user")
			}
			return fmt.Errorf("failed to update role: %w", err)
		}
		revoked, err = tx.Session().RevokeAllForUser(ctx, nil, userID, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.markRevoked(ctx, revoked)
	user.Role = req.Role

	publish(ctx, s.publisher, s.logger, events.UserRoleChanged, events.UserRoleChangedData{
		UserID:    userID,
		OldRole:   string(oldRole),
		NewRole:   string(req.Role),
		ChangedBy: actor.UserID,
	})
	s.logger.Info("User role changed", "user_id", userID, "old_role", oldRole, "new_role", req.Role, "admin_id", actor.UserID)

	return user, nil
}

// DeleteUser removes a user together with their notes, enrollments,
// attendance and sessions. confirm must be set explicitly.
func (s *adminService) DeleteUser(ctx context.Context, actor *auth.Session, userID string, confirm bool) error {
	if !auth.IsAuthorized(actor, models.RoleAdmin) {
		return ErrForbidden
	}
	if !confirm {
		return invalidf("Deletion must be confirmed", validator.ValidationError{Field: "confirm", Message: "must be true", Rule: "required"})
	}
	if actor.UserID == userID {
		return fmt.Errorf("cannot delete your own account: %w", ErrForbidden)
	}

	target, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	var (
		authID  string
		revoked []string
	)
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// Cached profiles omit the identity link, so read the full row.
		full, err := tx.User().GetByEmail(ctx, nil, target.Email)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		authID = full.AuthID

		if err := tx.Note().DeleteByOwner(ctx, nil, userID); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}
		if err := tx.Course().DeleteEnrollmentsByUser(ctx, nil, userID); err != nil {
			return fmt.Errorf("failed to delete enrollments: %w", err)
		}
		if err := tx.Attendance().DeleteByStudent(ctx, nil, userID); err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		if revoked, err = tx.Session().RevokeAllForUser(ctx, nil, userID, s.now().UTC()); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		if err := tx.User().Delete(ctx, nil, userID); err != nil {
			if repositories.IsNotFoundError(err) {
				return notFound("user")
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.markRevoked(ctx, revoked)

	if authID != "" {
		identity := s.repo.Identity()
		if err := identity.DeleteIdentity(ctx, authID); err != nil {
			s.logger.Warn("Failed to delete identity", "auth_id", authID, "identity", identity.Name(), "error", err)
		}
	}

	publish(ctx, s.publisher, s.logger, events.UserDeleted, events.UserDeletedData{
		UserID:    userID,
		Email:     target.Email,
		DeletedBy: actor.UserID,
	})
	s.logger.Info("User deleted", "user_id", userID, "admin_id", actor.UserID)
	return nil
}

func (s *adminService) Stats(ctx context.Context) (*repositories.SystemStats, error) {
	var out repositories.SystemStats
	err := s.cache.Stats.CacheOrExecute(ctx, "system", &out, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		stats, err := s.repo.Dashboard().GetSystemStats(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load system stats: %w", err)
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *adminService) markRevoked(ctx context.Context, sessionIDs []string) {
	for _, id := range sessionIDs {
		if err := s.cache.Session.SetString(ctx, id, sessionRevoked, s.sessionTTL); err != nil {
			s.logger.Warn("Failed to cache revoked session", "session_id", id, "error", err)
		}
	}
}

func (s *adminService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
