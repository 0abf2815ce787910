package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

type scheduleService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewScheduleService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ScheduleService {
	return &scheduleService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *scheduleService) List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.ClassSession, error) {
	if filters.Day != nil && *filters.Day != "" {
		if err := s.validator.Var("day", *filters.Day, "weekday"); err != nil {
			return nil, invalid(err)
		}
	}
	sessions, err := s.repo.Schedule().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return nonNil(sessions), nil
}

// Week groups every class by weekday, Monday first. Days without classes are
// included with an empty list.
func (s *scheduleService) Week(ctx context.Context) ([]*DaySchedule, error) {
	sessions, err := s.List(ctx, repositories.ScheduleFilters{})
	if err != nil {
		return nil, err
	}

	week := make([]*DaySchedule, 0, len(models.Weekdays))
	byDay := make(map[string]*DaySchedule, len(models.Weekdays))
	for _, day := range models.Weekdays {
		d := &DaySchedule{Day: day, Classes: []*models.ClassSession{}}
		week = append(week, d)
		byDay[day] = d
	}
	for _, cs := range sessions {
		if d, ok := byDay[cs.Day]; ok {
			d.Classes = append(d.Classes, cs)
		}
	}
	return week, nil
}

// Upcoming returns today's classes that have not started yet. When none are
// left it falls back to the first two classes of the day.
func (s *scheduleService) Upcoming(ctx context.Context, now time.Time) ([]*models.ClassSession, error) {
	day := now.Weekday().String()
	today, err := s.List(ctx, repositories.ScheduleFilters{Day: &day})
	if err != nil {
		return nil, err
	}
	return upcomingClasses(today, now.Format("15:04")), nil
}

func upcomingClasses(today []*models.ClassSession, clock string) []*models.ClassSession {
	upcoming := []*models.ClassSession{}
	for _, cs := range today {
		if cs.StartTime > clock {
			upcoming = append(upcoming, cs)
		}
	}
	if len(upcoming) > 0 {
		return upcoming
	}
	return today[:min(2, len(today))]
}

func (s *scheduleService) Create(ctx context.Context, req *models.ClassSessionRequest) (*models.ClassSession, error) {
	session := &models.ClassSession{ID: uuid.NewString()}
	if err := s.apply(session, req); err != nil {
		return nil, err
	}
	if err := s.repo.Schedule().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	s.logger.Info("Class scheduled", "class_id", session.ID, "course_code", session.CourseCode, "day", session.Day)
	return session, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *models.ClassSessionRequest) (*models.ClassSession, error) {
	session, err := s.repo.Schedule().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("class")
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if err := s.apply(session, req); err != nil {
		return nil, err
	}
	if err := s.repo.Schedule().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return session, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Schedule().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return notFound("class")
		}
		return fmt.Errorf("failed to delete class: %w", err)
	}
	return nil
}

func (s *scheduleService) apply(session *models.ClassSession, req *models.ClassSessionRequest) error {
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	if err := s.validator.Validate(req); err != nil {
		return invalid(err)
	}
	// Zero-padded HH:MM compares correctly as a string.
	if req.EndTime <= req.StartTime {
		return invalidf("Validation failed", validator.ValidationError{Field: "end_time", Message: "must be after start_time", Rule: "gtfield"})
	}

	session.Course = strings.TrimSpace(req.Course)
	session.CourseCode = req.CourseCode
	session.Day = req.Day
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime
	session.Room = strings.TrimSpace(req.Room)
	session.Instructor = strings.TrimSpace(req.Instructor)
	return nil
}
