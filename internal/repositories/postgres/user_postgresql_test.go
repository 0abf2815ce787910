package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/casdoor"
)

func TestUserRepository_LookupAndUniqueness(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, newUser("1", "student1", "John@Example.com", models.RoleStudent)))

	byName, err := repo.User().GetByLogin(ctx, nil, "STUDENT1")
	require.NoError(t, err)
	assert.Equal(t, "1", byName.ID)

	byEmail, err := repo.User().GetByLogin(ctx, nil, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", byEmail.ID)

	_, err = repo.User().GetByLogin(ctx, nil, "nobody")
	assert.True(t, repositories.IsNotFoundError(err))

	exists, err := repo.User().ExistsByEmail(ctx, nil, "JOHN@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.User().ExistsByEmail(ctx, nil, "john@example.com", "1")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.User().Create(ctx, nil, newUser("2", "other", "john@example.com", models.RoleStudent))
	assert.True(t, repositories.IsDuplicateError(err))
}

func TestUserRepository_ListRoleDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, newUser("1", "student1", "john@example.com", models.RoleStudent)))
	require.NoError(t, repo.User().Create(ctx, nil, newUser("2", "student2", "jane@example.com", models.RoleStudent)))
	require.NoError(t, repo.User().Create(ctx, nil, newUser("3", "admin", "admin@example.com", models.RoleAdmin)))

	admin := models.RoleAdmin
	users, total, err := repo.User().List(ctx, nil, repositories.UserFilters{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "3", users[0].ID)

	users, total, err = repo.User().List(ctx, nil, repositories.UserFilters{Query: "JANE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "2", users[0].ID)

	require.NoError(t, repo.User().UpdateRole(ctx, nil, "2", models.RoleAdmin))
	counts, err := repo.User().CountByRole(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.RoleStudent])
	assert.Equal(t, int64(2), counts[models.RoleAdmin])

	require.NoError(t, repo.User().Delete(ctx, nil, "2"))
	assert.True(t, repositories.IsNotFoundError(repo.User().Delete(ctx, nil, "2")))
	assert.True(t, repositories.IsNotFoundError(repo.User().UpdateRole(ctx, nil, "2", models.RoleStudent)))

	// Hard delete frees the email for a new account.
	require.NoError(t, repo.User().Create(ctx, nil, newUser("4", "jane2", "jane@example.com", models.RoleStudent)))
}

func TestUserRepository_GetByIDUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewPostgreSQLRepository(RepositoryConfig{
		DB:          newTestDB(t),
		RedisClient: client,
		Identity:    casdoor.NewIdentityLocal(),
	})
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, newUser("1", "student1", "john@example.com", models.RoleStudent)))

	_, err := repo.User().GetByID(ctx, nil, "1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:id:1"))

	require.NoError(t, repo.User().UpdateRole(ctx, nil, "1", models.RoleAdmin))
	assert.False(t, mr.Exists("user:id:1"))

	got, err := repo.User().GetByID(ctx, nil, "1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Session().Create(ctx, nil, &models.SessionRecord{ID: "s1", UserID: "1", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Session().Create(ctx, nil, &models.SessionRecord{ID: "s2", UserID: "1", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Session().Create(ctx, nil, &models.SessionRecord{ID: "old", UserID: "2", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))

	require.NoError(t, repo.Session().Revoke(ctx, nil, "s1", now))
	require.NoError(t, repo.Session().Revoke(ctx, nil, "s1", now.Add(time.Minute)))
	assert.True(t, repositories.IsNotFoundError(repo.Session().Revoke(ctx, nil, "missing", now)))

	s1, err := repo.Session().GetByID(ctx, nil, "s1")
	require.NoError(t, err)
	assert.False(t, s1.Active(now))

	ids, err := repo.Session().RevokeAllForUser(ctx, nil, "1", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, ids)

	deleted, err := repo.Session().DeleteExpired(ctx, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
