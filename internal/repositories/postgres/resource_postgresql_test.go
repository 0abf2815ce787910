package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

func TestResourceRepository_TransitionOnlyFromPending(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	res := newResource("Syllabus", "CS101", models.ResourcePDF, "1")
	require.NoError(t, repo.Resource().Create(ctx, nil, res))

	decision := repositories.ResourceDecision{DecidedBy: "admin", DecidedAt: time.Now().UTC()}

	changed, err := repo.Resource().Transition(ctx, nil, res.ID, models.ResourcePending, models.ResourceApproved, decision)
	require.NoError(t, err)
	assert.True(t, changed)

	// A second decision finds nothing in pending.
	changed, err = repo.Resource().Transition(ctx, nil, res.ID, models.ResourcePending, models.ResourceRejected, decision)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.Resource().GetByID(ctx, nil, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResourceApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, "admin", *got.DecidedBy)
	assert.NotNil(t, got.DecidedAt)

	// Unknown ids never change anything.
	changed, err = repo.Resource().Transition(ctx, nil, "missing", models.ResourcePending, models.ResourceApproved, decision)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResourceRepository_GetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Resource().GetByID(context.Background(), nil, "missing")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestResourceRepository_ListFiltersAndSearch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	fixtures := []*models.Resource{
		newResource("Data Structures Notes", "CS201", models.ResourcePDF, "1"),
		newResource("Calculus Video", "MATH101", models.ResourceVideo, "2"),
		newResource("Physics Lab Manual", "PHY101", models.ResourceDocument, "1"),
		newResource("100% Guide", "CS101", models.ResourceDocument, "2"),
	}
	for _, r := range fixtures {
		require.NoError(t, repo.Resource().Create(ctx, nil, r))
	}

	approved := models.ResourceApproved
	_, err := repo.Resource().Transition(ctx, nil, fixtures[0].ID, models.ResourcePending, approved, repositories.ResourceDecision{DecidedBy: "a", DecidedAt: time.Now()})
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters repositories.ResourceFilters
		want    []string
	}{
		{name: "empty query returns all", filters: repositories.ResourceFilters{}, want: []string{fixtures[0].ID, fixtures[1].ID, fixtures[2].ID, fixtures[3].ID}},
		{name: "case insensitive title", filters: repositories.ResourceFilters{Query: "calculus"}, want: []string{fixtures[1].ID}},
		{name: "matches course code", filters: repositories.ResourceFilters{Query: "phy1"}, want: []string{fixtures[2].ID}},
		{name: "matches description", filters: repositories.ResourceFilters{Query: "LAB MANUAL DESC"}, want: []string{fixtures[2].ID}},
		{name: "percent is literal", filters: repositories.ResourceFilters{Query: "100%"}, want: []string{fixtures[3].ID}},
		{name: "underscore is literal", filters: repositories.ResourceFilters{Query: "_"}, want: nil},
		{name: "status", filters: repositories.ResourceFilters{Status: &approved}, want: []string{fixtures[0].ID}},
		{name: "submitter", filters: repositories.ResourceFilters{SubmitterID: strPtr("2")}, want: []string{fixtures[1].ID, fixtures[3].ID}},
		{name: "type facet", filters: repositories.ResourceFilters{Type: typePtr(models.ResourceDocument)}, want: []string{fixtures[2].ID, fixtures[3].ID}},
		{name: "course facet", filters: repositories.ResourceFilters{CourseCode: strPtr("CS101")}, want: []string{fixtures[3].ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.Resource().List(ctx, nil, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)

			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestResourceRepository_CountersFacetsReviews(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := newResource("A", "CS101", models.ResourcePDF, "1")
	b := newResource("B", "MATH101", models.ResourceVideo, "1")
	c := newResource("C", "PHY101", models.ResourceDocument, "1")
	for _, r := range []*models.Resource{a, b, c} {
		require.NoError(t, repo.Resource().Create(ctx, nil, r))
	}
	decision := repositories.ResourceDecision{DecidedBy: "admin", DecidedAt: time.Now()}
	_, err := repo.Resource().Transition(ctx, nil, a.ID, models.ResourcePending, models.ResourceApproved, decision)
	require.NoError(t, err)
	_, err = repo.Resource().Transition(ctx, nil, b.ID, models.ResourcePending, models.ResourceApproved, decision)
	require.NoError(t, err)
	_, err = repo.Resource().Transition(ctx, nil, c.ID, models.ResourcePending, models.ResourceRejected, decision)
	require.NoError(t, err)

	require.NoError(t, repo.Resource().IncrementViews(ctx, nil, a.ID))
	require.NoError(t, repo.Resource().IncrementViews(ctx, nil, a.ID))
	require.NoError(t, repo.Resource().IncrementDownloads(ctx, nil, a.ID))

	got, err := repo.Resource().GetByID(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, int64(1), got.Downloads)

	counts, err := repo.Resource().CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.ResourceApproved])
	assert.Equal(t, int64(1), counts[models.ResourceRejected])
	assert.Equal(t, int64(0), counts[models.ResourcePending])

	types, courses, err := repo.Resource().ApprovedFacets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.ResourceType{models.ResourcePDF, models.ResourceVideo}, types)
	assert.Equal(t, []string{"CS101", "MATH101"}, courses)

	require.NoError(t, repo.Resource().AddReview(ctx, nil, &models.ResourceReview{
		ResourceID: a.ID,
		ReviewerID: "admin",
		FromStatus: models.ResourcePending,
		ToStatus:   models.ResourceApproved,
		Detail:     datatypes.JSON(`{"reason":null}`),
	}))
	reviews, err := repo.Resource().ListReviews(ctx, nil, a.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, models.ResourceApproved, reviews[0].ToStatus)
}

func strPtr(s string) *string { return &s }

func typePtr(t models.ResourceType) *models.ResourceType { return &t }
