package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

func addCourse(t *testing.T, h *harness, code, name string, credits int) *models.Course {
	t.Helper()
	c := &models.Course{ID: uuid.NewString(), Code: code, Name: name, Instructor: "Dr. Test", Credits: credits}
	require.NoError(t, h.repo.Course().Create(h.ctx, nil, c))
	return c
}

func courseCodes(courses []*models.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Code
	}
	return out
}

// ===== PROFILE & ENROLLMENT =====

func TestProfileService_EnrollAndDrop(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	cs101 := addCourse(t, h, "CS101", "Intro", 3)
	addCourse(t, h, "CS201", "Data Structures", 4)
	svc := h.manager.Profile()

	available, err := svc.Available(h.ctx, "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CS101", "CS201"}, courseCodes(available))

	require.NoError(t, svc.Enroll(h.ctx, "s1", cs101.ID))
	assert.ErrorIs(t, svc.Enroll(h.ctx, "s1", cs101.ID), ErrConflict)
	assert.ErrorIs(t, svc.Enroll(h.ctx, "s1", "nope"), ErrNotFound)

	enrolled, err := svc.Enrolled(h.ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101"}, courseCodes(enrolled))
	available, err = svc.Available(h.ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS201"}, courseCodes(available))

	profile, err := svc.Get(h.ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.TotalCredits)

	require.NoError(t, svc.Drop(h.ctx, "s1", cs101.ID))
	assert.ErrorIs(t, svc.Drop(h.ctx, "s1", cs101.ID), ErrNotFound)

	enrolled, err = svc.Enrolled(h.ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, enrolled)
	available, err = svc.Available(h.ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestProfileService_AddCourse(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	svc := h.manager.Profile()

	course, err := svc.AddCourse(h.ctx, "s1", &models.CourseCreateRequest{Code: "ml410", Name: "Machine Learning", Instructor: "Dr. Ng"})
	require.NoError(t, err)
	assert.Equal(t, "ML410", course.Code)
	assert.Equal(t, models.DefaultCourseCredits, course.Credits)

	enrolled, err := svc.Enrolled(h.ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ML410"}, courseCodes(enrolled))

	_, err = svc.AddCourse(h.ctx, "s1", &models.CourseCreateRequest{Code: "ML410", Name: "Again", Instructor: "Dr. Ng"})
	assert.ErrorIs(t, err, ErrConflict)

	list, err := svc.ListCourses(h.ctx, repositories.CourseFilters{Query: "machine"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestProfileService_Update(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "s1", "student1", models.RoleStudent)
	h.addUser(t, "s2", "student2", models.RoleStudent)
	svc := h.manager.Profile()

	// Warm the profile cache so the update has to invalidate it.
	_, err := svc.Get(h.ctx, user.ID)
	require.NoError(t, err)

	updated, err := svc.Update(h.ctx, user.ID, &models.ProfileUpdateRequest{FullName: ptr("John Doe"), Phone: ptr("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", updated.FullName)

	again, err := svc.Get(h.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again.FullName)
	require.NotNil(t, again.Phone)

	_, err = svc.Update(h.ctx, user.ID, &models.ProfileUpdateRequest{Email: ptr("student2@example.com")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// The password hash survives a profile update.
	_, err = h.manager.Auth().Login(h.ctx, &models.LoginRequest{Username: "student1", Password: "password123"}, ClientInfo{})
	assert.NoError(t, err)
}

func TestProfileService_Dashboard(t *testing.T) {
	h := newHarness(t)
	session := h.login(t, h.addUser(t, "s1", "student1", models.RoleStudent))
	seedAttendance(t, h, "s1")
	c := addCourse(t, h, "CS101", "Intro", 3)
	require.NoError(t, h.manager.Profile().Enroll(h.ctx, "s1", c.ID))
	_, err := h.manager.Note().Create(h.ctx, "s1", &models.NoteRequest{Title: "t", Content: "c", Category: "CS101"})
	require.NoError(t, err)

	summary, err := h.manager.Profile().Dashboard(h.ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 75, summary.AttendanceRate)
	assert.EqualValues(t, 1, summary.NotesCreated)
	assert.Equal(t, 1, summary.EnrolledCourses)
	assert.Zero(t, summary.ResourcesAccessed)
}

// ===== ADMIN =====

func TestAdminService_ListUsers(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	h.addUser(t, "a1", "admin", models.RoleAdmin)
	c := addCourse(t, h, "CS101", "Intro", 3)
	require.NoError(t, h.manager.Profile().Enroll(h.ctx, "s1", c.ID))

	students := models.RoleStudent
	list, err := h.manager.Admin().ListUsers(h.ctx, repositories.UserFilters{Role: &students})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "s1", list.Users[0].ID)
	assert.EqualValues(t, 1, list.Users[0].EnrollmentCount)
}

func TestAdminService_UpdateRoleRevokesSessions(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "s1", "student1", models.RoleStudent)
	admin := h.login(t, h.addUser(t, "a1", "admin", models.RoleAdmin))

	resp, err := h.manager.Auth().Login(h.ctx, &models.LoginRequest{Username: user.Username, Password: "password123"}, ClientInfo{})
	require.NoError(t, err)
	_, err = h.manager.Auth().Authenticate(h.ctx, resp.Token)
	require.NoError(t, err)

	svc := h.manager.Admin()
	updated, err := svc.UpdateRole(h.ctx, admin, "s1", &models.RoleUpdateRequest{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Len(t, h.publisher.EventsOfType(events.UserRoleChanged), 1)

	_, err = h.manager.Auth().Authenticate(h.ctx, resp.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.UpdateRole(h.ctx, admin, admin.UserID, &models.RoleUpdateRequest{Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateRole(h.ctx, admin, "s1", &models.RoleUpdateRequest{Role: "teacher"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateRole(h.ctx, admin, "ghost", &models.RoleUpdateRequest{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminService_DeleteUserCascades(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	admin := h.login(t, h.addUser(t, "a1", "admin", models.RoleAdmin))
	seedAttendance(t, h, "s1")
	c := addCourse(t, h, "CS101", "Intro", 3)
	require.NoError(t, h.manager.Profile().Enroll(h.ctx, "s1", c.ID))
	_, err := h.manager.Note().Create(h.ctx, "s1", &models.NoteRequest{Title: "t", Content: "c", Category: "x"})
	require.NoError(t, err)

	svc := h.manager.Admin()
	assert.ErrorIs(t, svc.DeleteUser(h.ctx, admin, "s1", false), ErrValidationFailed)
	assert.ErrorIs(t, svc.DeleteUser(h.ctx, admin, admin.UserID, true), ErrForbidden)

	require.NoError(t, svc.DeleteUser(h.ctx, admin, "s1", true))
	assert.Len(t, h.publisher.EventsOfType(events.UserDeleted), 1)

	_, err = h.repo.User().GetByID(h.ctx, nil, "s1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	notes, err := h.repo.Note().CountByOwner(h.ctx, nil, "s1")
	require.NoError(t, err)
	assert.Zero(t, notes)

	_, total, err := h.repo.Attendance().List(h.ctx, nil, repositories.AttendanceFilters{StudentID: ptr("s1")})
	require.NoError(t, err)
	assert.Zero(t, total)

	counts, err := h.repo.Course().CountEnrollments(h.ctx, nil, []string{"s1"})
	require.NoError(t, err)
	assert.Zero(t, counts["s1"])

	assert.ErrorIs(t, svc.DeleteUser(h.ctx, admin, "s1", true), ErrNotFound)
}

func TestAdminService_Stats(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "s1", "student1", models.RoleStudent)
	h.addUser(t, "a1", "admin", models.RoleAdmin)
	addCourse(t, h, "CS101", "Intro", 3)

	stats, err := h.manager.Admin().Stats(h.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalStudents)
	assert.EqualValues(t, 1, stats.TotalAdmins)
	assert.EqualValues(t, 1, stats.TotalCourses)
}

func TestSeedDemoData(t *testing.T) {
	h := newHarness(t)
	logger := discardLogger()

	require.NoError(t, SeedDemoData(h.ctx, h.repo, logger))
	// Seeding twice is a no-op.
	require.NoError(t, SeedDemoData(h.ctx, h.repo, logger))

	resp, err := h.manager.Auth().Login(h.ctx, &models.LoginRequest{Username: "admin", Password: "admin123"}, ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	browse, err := h.manager.Resource().Browse(h.ctx, repositories.ResourceFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, len(demoResources), browse.Total)

	student := h.login(t, &models.User{Username: "student1"})
	stats, err := h.manager.Attendance().Stats(h.ctx, student, "")
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
}
