package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

// ===== NOTES =====

func TestNoteService_CRUDAndOwnership(t *testing.T) {
	h := newHarness(t)
	svc := h.manager.Note()

	note, err := svc.Create(h.ctx, "owner", &models.NoteRequest{Title: " Loops ", Content: "**for** and while", Category: "CS101"})
	require.NoError(t, err)
	assert.Equal(t, "Loops", note.Title)
	assert.Contains(t, models.NoteColors, note.Color)
	assert.False(t, note.CreatedAt.IsZero())

	got, err := svc.Get(h.ctx, "owner", note.ID)
	require.NoError(t, err)
	assert.Contains(t, got.ContentHTML, "<strong>for</strong>")

	_, err = svc.Get(h.ctx, "intruder", note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(h.ctx, "intruder", note.ID, &models.NoteRequest{Title: "x", Content: "y", Category: "z"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(h.ctx, "intruder", note.ID), ErrNotFound)

	updated, err := svc.Update(h.ctx, "owner", note.ID, &models.NoteRequest{Title: "Loops", Content: "updated", Category: "CS201"})
	require.NoError(t, err)
	assert.Equal(t, "CS201", updated.Category)
	assert.Equal(t, note.Color, updated.Color)
	assert.False(t, updated.UpdatedAt.Before(note.UpdatedAt))

	_, err = svc.Create(h.ctx, "owner", &models.NoteRequest{Title: "t", Content: "c", Category: " "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, svc.Delete(h.ctx, "owner", note.ID))
	_, err = svc.Get(h.ctx, "owner", note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteService_ListFiltersAndCategories(t *testing.T) {
	h := newHarness(t)
	svc := h.manager.Note()

	for _, n := range []models.NoteRequest{
		{Title: "Variables", Content: "int, string", Category: "CS101"},
		{Title: "Loop Structures", Content: "for, while", Category: "CS101"},
		{Title: "Integration", Content: "by parts", Category: "MATH201"},
	} {
		_, err := svc.Create(h.ctx, "owner", &n)
		require.NoError(t, err)
	}
	_, err := svc.Create(h.ctx, "someone-else", &models.NoteRequest{Title: "Loops elsewhere", Content: "x", Category: "BIO100"})
	require.NoError(t, err)

	all, err := svc.List(h.ctx, "owner", repositories.NoteFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, []string{"CS101", "MATH201"}, all.Categories)

	loops, err := svc.List(h.ctx, "owner", repositories.NoteFilters{Query: "LOOP"})
	require.NoError(t, err)
	require.Len(t, loops.Notes, 1)
	assert.Equal(t, "Loop Structures", loops.Notes[0].Title)

	math, err := svc.List(h.ctx, "owner", repositories.NoteFilters{Category: ptr("MATH201")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, math.Total)

	none, err := svc.List(h.ctx, "nobody", repositories.NoteFilters{})
	require.NoError(t, err)
	assert.NotNil(t, none.Notes)
	assert.Empty(t, none.Categories)
}

// ===== ATTENDANCE =====

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		present, late, total int
		want                 int
	}{
		{0, 0, 0, 0},
		{2, 1, 3, 83},
		{2, 0, 3, 67},
		{3, 0, 3, 100},
		{0, 1, 1, 50},
		{0, 0, 4, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attendancePercentage(tt.present, tt.late, tt.total), "%+v", tt)
	}
}

func seedAttendance(t *testing.T, h *harness, studentID string) {
	t.Helper()
	svc := h.manager.Attendance()
	for _, r := range []models.AttendanceRequest{
		{StudentID: studentID, CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-20", Status: models.AttendancePresent},
		{StudentID: studentID, CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-18", Status: models.AttendancePresent},
		{StudentID: studentID, CourseCode: "cs101", CourseName: "Intro", Date: "2024-10-16", Status: models.AttendanceLate, Time: ptr("10:15")},
		{StudentID: studentID, CourseCode: "MATH201", CourseName: "Calculus II", Date: "2024-10-20", Status: models.AttendancePresent},
		{StudentID: studentID, CourseCode: "MATH201", CourseName: "Calculus II", Date: "2024-10-18", Status: models.AttendanceAbsent},
		{StudentID: studentID, CourseCode: "MATH201", CourseName: "Calculus II", Date: "2024-10-16", Status: models.AttendancePresent},
	} {
		_, err := svc.Create(h.ctx, &r)
		require.NoError(t, err)
	}
}

func TestAttendanceService_StatsAndScoping(t *testing.T) {
	h := newHarness(t)
	student := h.login(t, h.addUser(t, "s1", "student1", models.RoleStudent))
	other := h.login(t, h.addUser(t, "s2", "student2", models.RoleStudent))
	admin := h.login(t, h.addUser(t, "a1", "admin", models.RoleAdmin))
	seedAttendance(t, h, "s1")
	svc := h.manager.Attendance()

	stats, err := svc.Stats(h.ctx, student, "")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.Present)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 1, stats.Absent)
	assert.Equal(t, 75, stats.Percentage)
	require.Len(t, stats.Courses, 2)
	assert.Equal(t, "CS101", stats.Courses[0].CourseCode)
	assert.Equal(t, 83, stats.Courses[0].Percentage)
	assert.Equal(t, 67, stats.Courses[1].Percentage)

	// A student asking for someone else's records gets their own.
	theirs, err := svc.Stats(h.ctx, other, "s1")
	require.NoError(t, err)
	assert.Zero(t, theirs.Total)
	assert.Zero(t, theirs.Percentage)

	viaAdmin, err := svc.Stats(h.ctx, admin, "s1")
	require.NoError(t, err)
	assert.Equal(t, 6, viaAdmin.Total)

	list, err := svc.List(h.ctx, student, repositories.AttendanceFilters{Query: "calc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, "2024-10-20", list.Records[0].Date.Format(attendanceDateLayout))

	_, err = svc.Stats(h.ctx, nil, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAttendanceService_AdminMaintenance(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	svc := h.manager.Attendance()

	rec, err := svc.Create(h.ctx, &models.AttendanceRequest{StudentID: "s1", CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-20", Status: models.AttendanceAbsent})
	require.NoError(t, err)

	updated, err := svc.Update(h.ctx, rec.ID, &models.AttendanceRequest{StudentID: "s1", CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-20", Status: models.AttendanceLate, Time: ptr("09:10")})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, updated.Status)
	require.NotNil(t, updated.Time)
	assert.Equal(t, "09:10", *updated.Time)

	_, err = svc.Create(h.ctx, &models.AttendanceRequest{StudentID: "ghost", CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-20", Status: models.AttendancePresent})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(h.ctx, &models.AttendanceRequest{StudentID: "s1", CourseCode: "CS101", CourseName: "Intro", Date: "20/10/2024", Status: models.AttendancePresent})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Create(h.ctx, &models.AttendanceRequest{StudentID: "s1", CourseCode: "CS101", CourseName: "Intro", Date: "2024-10-20", Status: "excused"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, svc.Delete(h.ctx, rec.ID))
	assert.ErrorIs(t, svc.Delete(h.ctx, rec.ID), ErrNotFound)
}

func TestAttendanceService_Export(t *testing.T) {
	h := newHarness(t)
	student := h.login(t, h.addUser(t, "s1", "student1", models.RoleStudent))
	seedAttendance(t, h, "s1")

	var buf bytes.Buffer
	require.NoError(t, h.manager.Attendance().Export(h.ctx, student, "", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Records", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Date", "Course Code", "Course Name", "Status", "Time"}, rows[0])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "Overall", summary[3][0])
	assert.Equal(t, "75", summary[3][6])
}

// ===== SCHEDULE =====

func TestUpcomingClasses(t *testing.T) {
	today := []*models.ClassSession{
		{ID: "a", StartTime: "09:00"},
		{ID: "b", StartTime: "11:00"},
		{ID: "c", StartTime: "14:00"},
	}
	ids := func(list []*models.ClassSession) []string {
		out := make([]string, len(list))
		for i, cs := range list {
			out[i] = cs.ID
		}
		return out
	}

	assert.Equal(t, []string{"b", "c"}, ids(upcomingClasses(today, "10:00")))
	assert.Equal(t, []string{"c"}, ids(upcomingClasses(today, "11:00")))
	// Once the day is over the first two classes are shown.
	assert.Equal(t, []string{"a", "b"}, ids(upcomingClasses(today, "18:00")))
	assert.Empty(t, upcomingClasses(nil, "08:00"))
}

func TestScheduleService(t *testing.T) {
	h := newHarness(t)
	svc := h.manager.Schedule()

	for _, req := range []models.ClassSessionRequest{
		{Course: "Data Structures", CourseCode: "CS201", Day: "Tuesday", StartTime: "11:00", EndTime: "12:30", Room: "Room 205", Instructor: "Dr. Johnson"},
		{Course: "Intro CS", CourseCode: "cs101", Day: "Monday", StartTime: "13:00", EndTime: "14:30", Room: "Room 101", Instructor: "Dr. Smith"},
		{Course: "Intro CS", CourseCode: "CS101", Day: "Monday", StartTime: "09:00", EndTime: "10:30", Room: "Room 101", Instructor: "Dr. Smith"},
	} {
		_, err := svc.Create(h.ctx, &req)
		require.NoError(t, err)
	}

	week, err := svc.Week(h.ctx)
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, "Monday", week[0].Day)
	require.Len(t, week[0].Classes, 2)
	assert.Equal(t, "09:00", week[0].Classes[0].StartTime)
	assert.Len(t, week[1].Classes, 1)
	assert.Empty(t, week[6].Classes)

	smith, err := svc.List(h.ctx, repositories.ScheduleFilters{Query: "smith"})
	require.NoError(t, err)
	assert.Len(t, smith, 2)

	_, err = svc.List(h.ctx, repositories.ScheduleFilters{Day: ptr("Funday")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// 2024-10-21 is a Monday.
	monday := time.Date(2024, 10, 21, 10, 0, 0, 0, time.UTC)
	upcoming, err := svc.Upcoming(h.ctx, monday)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "13:00", upcoming[0].StartTime)

	_, err = svc.Create(h.ctx, &models.ClassSessionRequest{Course: "Bad", CourseCode: "CS999", Day: "Friday", StartTime: "10:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	first := week[0].Classes[0]
	moved, err := svc.Update(h.ctx, first.ID, &models.ClassSessionRequest{Course: first.Course, CourseCode: first.CourseCode, Day: "Friday", StartTime: "08:00", EndTime: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, "Friday", moved.Day)

	require.NoError(t, svc.Delete(h.ctx, first.ID))
	_, err = svc.Update(h.ctx, first.ID, &models.ClassSessionRequest{Course: "x", CourseCode: "CS101", Day: "Friday", StartTime: "08:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, ErrNotFound)
}
