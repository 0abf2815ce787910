package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/storage"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

type resourceService struct {
	repo          repositories.Repository
	files         storage.FileStore
	cache         *cache.CacheManager
	publisher     events.EventPublisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	validator     *validator.Validator
	maxUploadSize int64
	now           func() time.Time
}

func NewResourceService(
	repo repositories.Repository,
	files storage.FileStore,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
	maxUploadSize int64,
) ResourceService {
	return &resourceService{
		repo:          repo,
		files:         files,
		cache:         cm,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
		validator:     validator,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// ===== SUBMISSION =====

func (s *resourceService) Submit(ctx context.Context, session *auth.Session, req *models.ResourceSubmitRequest, file *FileUpload) (*models.Resource, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	resource := &models.Resource{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Type:          req.Type,
		CourseCode:    req.CourseCode,
		Status:        models.ResourcePending,
		SubmitterID:   session.UserID,
		SubmitterName: session.Name,
		SubmittedAt:   s.now().UTC(),
	}

	if file != nil {
		if err := s.storeFile(ctx, resource, file); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		if resource.HasFile() {
			if derr := s.files.Delete(ctx, *resource.FileKey); derr != nil {
				s.logger.Warn("Failed to remove orphaned upload", "key", *resource.FileKey, "error", derr)
			}
		}
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.metrics.ObserveSubmission()
	cache.InvalidateResourceCache(ctx, s.cache, "")
	publish(ctx, s.publisher, s.logger, events.ResourceSubmitted, events.ResourceSubmittedData{
		ResourceID:  resource.ID,
		Title:       resource.Title,
		Type:        string(resource.Type),
		CourseCode:  resource.CourseCode,
		SubmitterID: resource.SubmitterID,
	})
	s.logger.Info("Resource submitted", "resource_id", resource.ID, "submitter_id", session.UserID)

	return resource, nil
}

func (s *resourceService) storeFile(ctx context.Context, resource *models.Resource, file *FileUpload) error {
	if s.files == nil {
		return &ServiceUnavailableError{Service: "file storage", Err: errors.New("not configured")}
	}
	if s.maxUploadSize > 0 && file.Size > s.maxUploadSize {
		return invalidf("File too large", validator.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d bytes", s.maxUploadSize),
		})
	}

	name := path.Base(strings.ReplaceAll(file.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := resource.ID + "/" + name
	size, err := s.files.Put(ctx, key, file.Body)
	if err != nil {
		return &ServiceUnavailableError{Service: "file storage", Err: err}
	}

	resource.FileKey = &key
	resource.FileName = &name
	resource.FileSize = size
	resource.ContentType = &contentType
	return nil
}

// ===== DECISIONS =====

func (s *resourceService) Approve(ctx context.Context, id string, admin *auth.Session) (*models.Resource, error) {
	return s.decide(ctx, id, admin, models.ResourceApproved, nil)
}

func (s *resourceService) Reject(ctx context.Context, id string, admin *auth.Session, req *models.ResourceDecisionRequest) (*models.Resource, error) {
	var reason *string
	if req != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, invalid(err)
		}
		reason = optionalString(derefString(req.Reason))
	}
	return s.decide(ctx, id, admin, models.ResourceRejected, reason)
}

// decide moves a pending resource to a terminal status. The conditional
// update makes the first decision win; any later one sees a non-pending row
// and fails with a TransitionError.
func (s *resourceService) decide(ctx context.Context, id string, admin *auth.Session, to models.ResourceStatus, reason *string) (*models.Resource, error) {
	if !auth.IsAuthorized(admin, models.RoleAdmin) {
		return nil, ErrForbidden
	}

	decidedAt := s.now().UTC()
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		changed, err := tx.Resource().Transition(ctx, nil, id, models.ResourcePending, to, repositories.ResourceDecision{
			DecidedBy: admin.UserID,
			DecidedAt: decidedAt,
			Note:      reason,
		})
		if err != nil {
			return fmt.Errorf("failed to update resource status: %w", err)
		}
		if !changed {
			current, err := tx.Resource().GetByID(ctx, nil, id)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return notFound("resource")
				}
				return fmt.Errorf("failed to get resource: %w", err)
			}
			return &TransitionError{ResourceID: id, From: string(current.Status), To: string(to)}
		}

		detail, err := json.Marshal(map[string]interface{}{
			"reason":        reason,
			"reviewer_name": admin.Name,
		})
		if err != nil {
			return err
		}
		return tx.Resource().AddReview(ctx, nil, &models.ResourceReview{
			ResourceID: id,
			ReviewerID: admin.UserID,
			FromStatus: models.ResourcePending,
			ToStatus:   to,
			Detail:     datatypes.JSON(detail),
			CreatedAt:  decidedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload resource: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cache, id)
	s.metrics.ObserveDecision(string(to))

	eventType := events.ResourceApproved
	if to == models.ResourceRejected {
		eventType = events.ResourceRejected
	}
	publish(ctx, s.publisher, s.logger, eventType, events.ResourceDecidedData{
		ResourceID:  resource.ID,
		Title:       resource.Title,
		SubmitterID: resource.SubmitterID,
		DecidedBy:   admin.UserID,
		Status:      string(to),
		Reason:      reason,
	})
	s.logger.Info("Resource decided", "resource_id", id, "status", to, "admin_id", admin.UserID)

	return resource, nil
}

// ===== PROJECTIONS =====

func (s *resourceService) Browse(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error) {
	approved := models.ResourceApproved
	filters.Status = &approved
	filters.SubmitterID = nil

	var out ResourceListResponse
	err := s.cache.Resource.CacheOrExecute(ctx, browseCacheKey(filters), &out, cache.ResourceCacheConfig.TTL, func() (interface{}, error) {
		return s.list(ctx, filters)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *resourceService) Facets(ctx context.Context) (*ResourceFacets, error) {
	var out ResourceFacets
	err := s.cache.Resource.CacheOrExecute(ctx, "facets", &out, cache.ResourceCacheConfig.TTL, func() (interface{}, error) {
		types, courses, err := s.repo.Resource().ApprovedFacets(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load facets: %w", err)
		}
		return &ResourceFacets{Types: nonNil(types), Courses: nonNil(courses)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *resourceService) ListMine(ctx context.Context, session *auth.Session, filters repositories.ResourceFilters) (*ResourceListResponse, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	filters.SubmitterID = &session.UserID
	return s.list(ctx, filters)
}

func (s *resourceService) ListPending(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error) {
	pending := models.ResourcePending
	filters.Status = &pending
	if filters.SortBy == "" {
		// Oldest submissions first so the queue is worked in order.
		filters.SortBy, filters.SortOrder = "submitted_at", "asc"
	}
	return s.list(ctx, filters)
}

func (s *resourceService) ListApproved(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error) {
	approved := models.ResourceApproved
	filters.Status = &approved
	if filters.SortBy == "" {
		filters.SortBy, filters.SortOrder = "decided_at", "desc"
	}
	return s.list(ctx, filters)
}

func (s *resourceService) Reviews(ctx context.Context, id string) ([]*models.ResourceReview, error) {
	if _, err := s.getResource(ctx, id); err != nil {
		return nil, err
	}
	reviews, err := s.repo.Resource().ListReviews(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *resourceService) Stats(ctx context.Context) (*ResourceStats, error) {
	var out ResourceStats
	err := s.cache.Stats.CacheOrExecute(ctx, "resources", &out, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		counts, err := s.repo.Resource().CountByStatus(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count resources: %w", err)
		}
		stats := &ResourceStats{
			Pending:  counts[models.ResourcePending],
			Approved: counts[models.ResourceApproved],
			Rejected: counts[models.ResourceRejected],
		}
		stats.Total = stats.Pending + stats.Approved + stats.Rejected
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ===== SINGLE RESOURCE ACCESS =====

func (s *resourceService) Get(ctx context.Context, id string, session *auth.Session) (*models.Resource, error) {
	resource, err := s.visibleResource(ctx, id, session)
	if err != nil {
		return nil, err
	}

	if resource.Status == models.ResourceApproved {
		if err := s.repo.Resource().IncrementViews(ctx, nil, id); err != nil {
			s.logger.Warn("Failed to count view", "resource_id", id, "error", err)
		} else {
			resource.Views++
		}
	}
	return resource, nil
}

func (s *resourceService) OpenFile(ctx context.Context, id string, session *auth.Session) (*models.Resource, io.ReadCloser, error) {
	resource, err := s.visibleResource(ctx, id, session)
	if err != nil {
		return nil, nil, err
	}
	if !resource.HasFile() || s.files == nil {
		return nil, nil, notFound("file")
	}

	body, err := s.files.Open(ctx, *resource.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, notFound("file")
		}
		return nil, nil, &ServiceUnavailableError{Service: "file storage", Err: err}
	}

	if resource.Status == models.ResourceApproved {
		if err := s.repo.Resource().IncrementDownloads(ctx, nil, id); err != nil {
			s.logger.Warn("Failed to count download", "resource_id", id, "error", err)
		} else {
			resource.Downloads++
		}
	}
	return resource, body, nil
}

// visibleResource hides undecided or rejected resources from everyone except
// the submitter and admins. Hidden resources look missing rather than
// forbidden.
func (s *resourceService) visibleResource(ctx context.Context, id string, session *auth.Session) (*models.Resource, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	resource, err := s.getResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.Status != models.ResourceApproved && resource.SubmitterID != session.UserID && !session.IsAdmin() {
		return nil, notFound("resource")
	}
	return resource, nil
}

func (s *resourceService) getResource(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("resource")
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

func (s *resourceService) list(ctx context.Context, filters repositories.ResourceFilters) (*ResourceListResponse, error) {
	resources, total, err := s.repo.Resource().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return &ResourceListResponse{Resources: nonNil(resources), Total: total}, nil
}

func browseCacheKey(f repositories.ResourceFilters) string {
	var typ, course string
	if f.Type != nil {
		typ = string(*f.Type)
	}
	if f.CourseCode != nil {
		course = *f.CourseCode
	}
	return fmt.Sprintf("browse:%s|%s|%s|%d|%d|%s|%s",
		typ, course, strings.ToLower(f.Query), f.Limit, f.Offset, f.SortBy, f.SortOrder)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
