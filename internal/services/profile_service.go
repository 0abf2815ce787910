package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== PROFILE =====

func (s *profileService) Get(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCourses(ctx, user)
}

func (s *profileService) Update(ctx context.Context, userID string, req *models.ProfileUpdateRequest) (*ProfileResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			taken, err := s.repo.User().ExistsByEmail(ctx, nil, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, invalidf("Email already registered", validator.ValidationError{Field: "email", Message: "is already registered"})
			}
			user.Email = email
		}
	}
	if req.StudentID != nil {
		user.StudentID = optionalString(*req.StudentID)
	}
	if req.Phone != nil {
		user.Phone = optionalString(*req.Phone)
	}
	if req.Address != nil {
		user.Address = optionalString(*req.Address)
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, invalidf("Email already registered", validator.ValidationError{Field: "email", Message: "is already registered"})
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.withCourses(ctx, user)
}

// Dashboard gathers the quick stats shown on the landing page.
func (s *profileService) Dashboard(ctx context.Context, session *auth.Session) (*DashboardSummary, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}

	records, _, err := s.repo.Attendance().List(ctx, nil, repositories.AttendanceFilters{StudentID: &session.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	_, submitted, err := s.repo.Resource().List(ctx, nil, repositories.ResourceFilters{
		SubmitterID: &session.UserID,
		ListOptions: repositories.ListOptions{Limit: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}
	notes, err := s.repo.Note().CountByOwner(ctx, nil, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	enrolled, err := s.repo.Course().ListEnrolled(ctx, nil, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled courses: %w", err)
	}

	return &DashboardSummary{
		Name:              session.Name,
		Role:              string(session.Role),
		AttendanceRate:    computeAttendanceStats(records).Percentage,
		ResourcesAccessed: submitted,
		NotesCreated:      notes,
		EnrolledCourses:   len(enrolled),
	}, nil
}

// ===== COURSES =====

func (s *profileService) ListCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return &CourseListResponse{Courses: nonNil(courses), Total: total}, nil
}

func (s *profileService) Enrolled(ctx context.Context, userID string) ([]*models.Course, error) {
	courses, err := s.repo.Course().ListEnrolled(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled courses: %w", err)
	}
	return nonNil(courses), nil
}

func (s *profileService) Available(ctx context.Context, userID string) ([]*models.Course, error) {
	courses, err := s.repo.Course().ListAvailable(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available courses: %w", err)
	}
	return nonNil(courses), nil
}

func (s *profileService) Enroll(ctx context.Context, userID, courseID string) error {
	if _, err := s.repo.Course().GetByID(ctx, nil, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return notFound("course")
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	err := s.repo.Course().Enroll(ctx, nil, &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: s.now().UTC(),
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("already enrolled in course: %w", ErrConflict)
		}
		return fmt.Errorf("failed to enroll: %w", err)
	}
	s.logger.Info("User enrolled", "user_id", userID, "course_id", courseID)
	return nil
}

func (s *profileService) Drop(ctx context.Context, userID, courseID string) error {
	dropped, err := s.repo.Course().Drop(ctx, nil, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to drop course: %w", err)
	}
	if !dropped {
		return notFound("enrollment")
	}
	s.logger.Info("User dropped course", "user_id", userID, "course_id", courseID)
	return nil
}

func (s *profileService) AddCourse(ctx context.Context, userID string, req *models.CourseCreateRequest) (*models.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}
	credits := req.Credits
	if credits == 0 {
		credits = models.DefaultCourseCredits
	}

	course := &models.Course{
		ID:         uuid.NewString(),
		Code:       req.Code,
		Name:       strings.TrimSpace(req.Name),
		Instructor: strings.TrimSpace(req.Instructor),
		Credits:    credits,
	}
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Course().Create(ctx, nil, course); err != nil {
			if repositories.IsDuplicateError(err) {
				return fmt.Errorf("course code %s already exists: %w", course.Code, ErrConflict)
			}
			return fmt.Errorf("failed to create course: %w", err)
		}
		return tx.Course().Enroll(ctx, nil, &models.Enrollment{
			UserID:     userID,
			CourseID:   course.ID,
			EnrolledAt: s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// ===== HELPERS =====

func (s *profileService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *profileService) withCourses(ctx context.Context, user *models.User) (*ProfileResponse, error) {
	courses, err := s.Enrolled(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, c := range courses {
		total += c.Credits
	}
	return &ProfileResponse{User: user, EnrolledCourses: courses, TotalCredits: total}, nil
}
