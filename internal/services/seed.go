package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type demoAccount struct {
	id, username, password, name, email string
	studentID                           string
	role                                models.UserRole
}

var demoAccounts = []demoAccount{
	{id: "1", username: "student1", password: "password123", name: "John Doe", email: "john@example.com", studentID: "STU-0001", role: models.RoleStudent},
	{id: "2", username: "student2", password: "password123", name: "Jane Smith", email: "jane@example.com", studentID: "STU-0002", role: models.RoleStudent},
	{id: "admin", username: "admin", password: "admin123", name: "Portal Admin", email: "admin@example.com", role: models.RoleAdmin},
}

var demoCourses = []models.Course{
	{Code: "CS101", Name: "Introduction to Computer Science", Instructor: "Dr. Smith", Credits: 3},
	{Code: "CS201", Name: "Data Structures", Instructor: "Dr. Johnson", Credits: 4},
	{Code: "CS301", Name: "Web Development", Instructor: "Dr. Williams", Credits: 3},
	{Code: "CS401", Name: "Database Systems", Instructor: "Dr. Brown", Credits: 4},
	{Code: "CS501", Name: "Artificial Intelligence", Instructor: "Dr. Davis", Credits: 3},
}

var demoSchedule = []models.ClassSession{
	{Course: "Introduction to Computer Science", CourseCode: "CS101", Day: "Monday", StartTime: "09:00", EndTime: "10:30", Room: "Room 101", Instructor: "Dr. Smith"},
	{Course: "Introduction to Computer Science", CourseCode: "CS101", Day: "Wednesday", StartTime: "09:00", EndTime: "10:30", Room: "Room 101", Instructor: "Dr. Smith"},
	{Course: "Introduction to Computer Science", CourseCode: "CS101", Day: "Friday", StartTime: "09:00", EndTime: "10:30", Room: "Room 101", Instructor: "Dr. Smith"},
	{Course: "Data Structures", CourseCode: "CS201", Day: "Tuesday", StartTime: "11:00", EndTime: "12:30", Room: "Room 205", Instructor: "Dr. Johnson"},
	{Course: "Data Structures", CourseCode: "CS201", Day: "Thursday", StartTime: "11:00", EndTime: "12:30", Room: "Room 205", Instructor: "Dr. Johnson"},
}

type demoAttendance struct {
	course, name, date string
	status             models.AttendanceStatus
	time               string
}

var demoAttendanceRecords = []demoAttendance{
	{"CS101", "Introduction to Programming", "2024-10-20", models.AttendancePresent, ""},
	{"CS101", "Introduction to Programming", "2024-10-18", models.AttendancePresent, ""},
	{"CS101", "Introduction to Programming", "2024-10-16", models.AttendanceLate, "10:15"},
	{"MATH201", "Calculus II", "2024-10-20", models.AttendancePresent, ""},
	{"MATH201", "Calculus II", "2024-10-18", models.AttendanceAbsent, ""},
	{"MATH201", "Calculus II", "2024-10-16", models.AttendancePresent, ""},
	{"ENG102", "English Literature", "2024-10-20", models.AttendancePresent, ""},
	{"ENG102", "English Literature", "2024-10-18", models.AttendancePresent, ""},
	{"ENG102", "English Literature", "2024-10-16", models.AttendancePresent, ""},
}

var demoNotes = []models.Note{
	{Title: "Variables and Data Types", Content: "Key concepts:\n- Variables store data\n- Common types: int, string, float, boolean\n- Type conversion is important", Category: "CS101", Color: "bg-blue-50"},
	{Title: "Loop Structures", Content: "For loops: iterate over sequences\nWhile loops: repeat while condition is true\nDo-while: execute at least once", Category: "CS101", Color: "bg-green-50"},
	{Title: "Integration by Parts", Content: "Formula: ∫u dv = uv - ∫v du\nChoose u and dv carefully\nOften used for polynomial × exponential", Category: "MATH201", Color: "bg-purple-50"},
	{Title: "Shakespeare's Themes", Content: "Love, betrayal, ambition, mortality\nSonnets explore unrequited love\nTragedies examine power and corruption", Category: "ENG102", Color: "bg-orange-50"},
}

type demoResource struct {
	title, description string
	typ                models.ResourceType
	course, date       string
	downloads, views   int64
}

var demoResources = []demoResource{
	{"Introduction to Variables and Data Types", "Comprehensive guide on variables, data types, and type conversion in programming", models.ResourcePDF, "CS101", "2024-10-15", 45, 120},
	{"Python Loops Tutorial", "Video tutorial covering for loops, while loops, and loop control statements", models.ResourceVideo, "CS101", "2024-10-14", 32, 89},
	{"Functions and Scope", "Detailed document on function definition, parameters, return values, and scope", models.ResourceDocument, "CS101", "2024-10-13", 28, 76},
	{"Calculus II - Integration Techniques", "PDF notes on integration by parts, substitution, and partial fractions", models.ResourcePDF, "MATH201", "2024-10-12", 52, 134},
	{"Differential Equations Lecture", "Video lecture on solving first-order and second-order differential equations", models.ResourceVideo, "MATH201", "2024-10-11", 38, 95},
	{"Shakespeare's Sonnets Analysis", "Study guide analyzing themes, structure, and literary devices in Shakespeare's sonnets", models.ResourceDocument, "ENG102", "2024-10-10", 41, 108},
	{"Romantic Era Poetry", "Comprehensive PDF covering major poets and works of the Romantic era", models.ResourcePDF, "ENG102", "2024-10-09", 35, 92},
	{"Literary Criticism Methods", "Video tutorial on different approaches to literary analysis and criticism", models.ResourceVideo, "ENG102", "2024-10-08", 29, 71},
}

// SeedDemoData loads the demo accounts and sample panel content. It does
// nothing once the first demo account exists.
func SeedDemoData(ctx context.Context, repo repositories.Repository, logger *slog.Logger) error {
	seeded, err := repo.User().ExistsByUsername(ctx, nil, demoAccounts[0].username)
	if err != nil {
		return err
	}
	if seeded {
		logger.Debug("Demo data already present")
		return nil
	}

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, a := range demoAccounts {
			hash, err := auth.HashPassword(a.password)
			if err != nil {
				return err
			}
			user := &models.User{
				ID:           a.id,
				AuthID:       a.id,
				Username:     a.username,
				FullName:     a.name,
				Email:        a.email,
				StudentID:    optionalString(a.studentID),
				Role:         a.role,
				PasswordHash: hash,
			}
			if err := tx.User().Create(ctx, nil, user); err != nil {
				return fmt.Errorf("seed user %s: %w", a.username, err)
			}
		}

		student := demoAccounts[0]
		admin := demoAccounts[2]

		for i, c := range demoCourses {
			course := c
			course.ID = uuid.NewString()
			if err := tx.Course().Create(ctx, nil, &course); err != nil {
				return fmt.Errorf("seed course %s: %w", c.Code, err)
			}
			// The first student starts enrolled in the first two courses.
			if i < 2 {
				if err := tx.Course().Enroll(ctx, nil, &models.Enrollment{UserID: student.id, CourseID: course.ID, EnrolledAt: time.Now().UTC()}); err != nil {
					return err
				}
			}
		}

		for _, s := range demoSchedule {
			session := s
			session.ID = uuid.NewString()
			if err := tx.Schedule().Create(ctx, nil, &session); err != nil {
				return fmt.Errorf("seed schedule: %w", err)
			}
		}

		for _, a := range demoAttendanceRecords {
			date, _ := time.Parse(attendanceDateLayout, a.date)
			record := &models.AttendanceRecord{
				ID:         uuid.NewString(),
				StudentID:  student.id,
				CourseCode: a.course,
				CourseName: a.name,
				Date:       date,
				Status:     a.status,
				Time:       optionalString(a.time),
			}
			if err := tx.Attendance().Create(ctx, nil, record); err != nil {
				return fmt.Errorf("seed attendance: %w", err)
			}
		}

		for _, n := range demoNotes {
			note := n
			note.ID = uuid.NewString()
			note.OwnerID = student.id
			if err := tx.Note().Create(ctx, nil, &note); err != nil {
				return fmt.Errorf("seed note: %w", err)
			}
		}

		for _, r := range demoResources {
			date, _ := time.Parse(attendanceDateLayout, r.date)
			decidedBy := admin.id
			resource := &models.Resource{
				ID:            uuid.NewString(),
				Title:         r.title,
				Description:   r.description,
				Type:          r.typ,
				CourseCode:    r.course,
				Status:        models.ResourceApproved,
				SubmitterID:   student.id,
				SubmitterName: student.name,
				SubmittedAt:   date,
				DecidedAt:     &date,
				DecidedBy:     &decidedBy,
				Views:         r.views,
				Downloads:     r.downloads,
			}
			if err := tx.Resource().Create(ctx, nil, resource); err != nil {
				return fmt.Errorf("seed resource: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Demo data seeded", "accounts", len(demoAccounts), "courses", len(demoCourses), "resources", len(demoResources))
	return nil
}
