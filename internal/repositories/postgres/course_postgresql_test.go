package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

func seedCourses(t *testing.T, repo *PostgreSQLRepository, codes ...string) []*models.Course {
	t.Helper()
	var out []*models.Course
	for _, code := range codes {
		c := &models.Course{ID: uuid.NewString(), Code: code, Name: code + " name", Instructor: "Dr. " + code, Credits: 3}
		require.NoError(t, repo.Course().Create(context.Background(), nil, c))
		out = append(out, c)
	}
	return out
}

func courseCodes(courses []*models.Course) []string {
	codes := make([]string, 0, len(courses))
	for _, c := range courses {
		codes = append(codes, c.Code)
	}
	return codes
}

func TestCourseRepository_EnrollAndDrop(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, newUser("1", "student1", "john@example.com", models.RoleStudent)))
	courses := seedCourses(t, repo, "CS101", "MATH201", "PHY101")

	available, err := repo.Course().ListAvailable(ctx, nil, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101", "MATH201", "PHY101"}, courseCodes(available))

	require.NoError(t, repo.Course().Enroll(ctx, nil, &models.Enrollment{UserID: "1", CourseID: courses[1].ID, EnrolledAt: time.Now()}))

	err = repo.Course().Enroll(ctx, nil, &models.Enrollment{UserID: "1", CourseID: courses[1].ID, EnrolledAt: time.Now()})
	assert.True(t, repositories.IsDuplicateError(err), "second enrollment must be a duplicate, got %v", err)

	enrolled, err := repo.Course().ListEnrolled(ctx, nil, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MATH201"}, courseCodes(enrolled))

	available, err = repo.Course().ListAvailable(ctx, nil, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101", "PHY101"}, courseCodes(available))

	counts, err := repo.Course().CountEnrollments(ctx, nil, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["1"])
	assert.Equal(t, int64(0), counts["2"])

	dropped, err := repo.Course().Drop(ctx, nil, "1", courses[1].ID)
	require.NoError(t, err)
	assert.True(t, dropped)

	dropped, err = repo.Course().Drop(ctx, nil, "1", courses[1].ID)
	require.NoError(t, err)
	assert.False(t, dropped)

	available, err = repo.Course().ListAvailable(ctx, nil, "1")
	require.NoError(t, err)
	assert.Len(t, available, 3)
}

func TestCourseRepository_CodeIsUniqueAndNormalised(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedCourses(t, repo, "CS101")

	err := repo.Course().Create(ctx, nil, &models.Course{ID: uuid.NewString(), Code: " cs101 ", Name: "Dup"})
	assert.True(t, repositories.IsDuplicateError(err))

	got, err := repo.Course().GetByCode(ctx, nil, "cs101")
	require.NoError(t, err)
	assert.Equal(t, "CS101", got.Code)

	list, total, err := repo.Course().List(ctx, nil, repositories.CourseFilters{Query: "dr. cs"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
