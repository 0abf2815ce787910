package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

const attendanceDateLayout = "2006-01-02"

type attendanceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttendanceService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AttendanceService {
	return &attendanceService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// scopeStudent returns the student whose records the caller may read.
// Students always get their own; admins may name anyone and default to
// themselves.
func scopeStudent(session *auth.Session, requested string) (string, error) {
	if session == nil {
		return "", ErrUnauthorized
	}
	requested = strings.TrimSpace(requested)
	if session.IsAdmin() && requested != "" {
		return requested, nil
	}
	return session.UserID, nil
}

func (s *attendanceService) List(ctx context.Context, session *auth.Session, filters repositories.AttendanceFilters) (*AttendanceListResponse, error) {
	var requested string
	if filters.StudentID != nil {
		requested = *filters.StudentID
	}
	studentID, err := scopeStudent(session, requested)
	if err != nil {
		return nil, err
	}
	filters.StudentID = &studentID

	records, total, err := s.repo.Attendance().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return &AttendanceListResponse{Records: nonNil(records), Total: total}, nil
}

func (s *attendanceService) Stats(ctx context.Context, session *auth.Session, studentID string) (*AttendanceStats, error) {
	studentID, err := scopeStudent(session, studentID)
	if err != nil {
		return nil, err
	}
	records, err := s.studentRecords(ctx, studentID)
	if err != nil {
		return nil, err
	}
	stats := computeAttendanceStats(records)
	stats.StudentID = studentID
	return stats, nil
}

func (s *attendanceService) studentRecords(ctx context.Context, studentID string) ([]*models.AttendanceRecord, error) {
	records, _, err := s.repo.Attendance().List(ctx, nil, repositories.AttendanceFilters{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// attendancePercentage counts a late arrival as half an attendance.
func attendancePercentage(present, late, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round((float64(present) + 0.5*float64(late)) / float64(total) * 100))
}

func computeAttendanceStats(records []*models.AttendanceRecord) *AttendanceStats {
	stats := &AttendanceStats{Courses: []*CourseAttendance{}}
	byCourse := make(map[string]*CourseAttendance)

	for _, r := range records {
		c, ok := byCourse[r.CourseCode]
		if !ok {
			c = &CourseAttendance{CourseCode: r.CourseCode, CourseName: r.CourseName}
			byCourse[r.CourseCode] = c
			stats.Courses = append(stats.Courses, c)
		}
		c.Total++
		stats.Total++
		switch r.Status {
		case models.AttendancePresent:
			c.Present++
			stats.Present++
		case models.AttendanceAbsent:
			c.Absent++
			stats.Absent++
		case models.AttendanceLate:
			c.Late++
			stats.Late++
		}
	}

	for _, c := range stats.Courses {
		c.Percentage = attendancePercentage(c.Present, c.Late, c.Total)
	}
	sort.Slice(stats.Courses, func(i, j int) bool {
		return stats.Courses[i].CourseCode < stats.Courses[j].CourseCode
	})
	stats.Percentage = attendancePercentage(stats.Present, stats.Late, stats.Total)
	return stats
}

// Export writes an XLSX workbook with a Records sheet and a per-course
// Summary sheet.
func (s *attendanceService) Export(ctx context.Context, session *auth.Session, studentID string, w io.Writer) error {
	studentID, err := scopeStudent(session, studentID)
	if err != nil {
		return err
	}
	records, err := s.studentRecords(ctx, studentID)
	if err != nil {
		return err
	}
	stats := computeAttendanceStats(records)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	const recordsSheet, summarySheet = "Records", "Summary"
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if err := f.SetSheetRow(recordsSheet, "A1", &[]interface{}{"Date", "Course Code", "Course Name", "Status", "Time"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Date.Format(attendanceDateLayout), r.CourseCode, r.CourseName, string(r.Status), derefString(r.Time)}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Course Code", "Course Name", "Total", "Present", "Late", "Absent", "Percentage"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, c := range stats.Courses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.CourseCode, c.CourseName, c.Total, c.Present, c.Late, c.Absent, c.Percentage}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	overall, err := excelize.CoordinatesToCellName(1, len(stats.Courses)+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, overall, &[]interface{}{"Overall", "", stats.Total, stats.Present, stats.Late, stats.Absent, stats.Percentage}); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ===== ADMIN MAINTENANCE =====

func (s *attendanceService) Create(ctx context.Context, req *models.AttendanceRequest) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{ID: uuid.NewString()}
	if err := s.apply(ctx, record, req); err != nil {
		return nil, err
	}
	if err := s.repo.Attendance().Create(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return record, nil
}

func (s *attendanceService) Update(ctx context.Context, id string, req *models.AttendanceRequest) (*models.AttendanceRecord, error) {
	record, err := s.repo.Attendance().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("attendance record")
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if err := s.apply(ctx, record, req); err != nil {
		return nil, err
	}
	if err := s.repo.Attendance().Update(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return record, nil
}

func (s *attendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Attendance().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return notFound("attendance record")
		}
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return nil
}

func (s *attendanceService) apply(ctx context.Context, record *models.AttendanceRecord, req *models.AttendanceRequest) error {
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	if err := s.validator.Validate(req); err != nil {
		return invalid(err)
	}
	date, err := time.Parse(attendanceDateLayout, req.Date)
	if err != nil {
		return invalidf("Validation failed", validator.ValidationError{Field: "date", Message: "must be a date in 2006-01-02 format"})
	}

	studentID := strings.TrimSpace(req.StudentID)
	exists, err := s.repo.User().ExistsByID(ctx, nil, studentID)
	if err != nil {
		return fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return notFound("student")
	}

	record.StudentID = studentID
	record.CourseCode = req.CourseCode
	record.CourseName = strings.TrimSpace(req.CourseName)
	record.Date = date
	record.Status = req.Status
	record.Time = optionalString(derefString(req.Time))
	return nil
}
