package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/learning-portal-service/pkg"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := pkg.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestRepository(t *testing.T) *PostgreSQLRepository {
	t.Helper()
	return NewPostgreSQLRepository(RepositoryConfig{
		DB:       newTestDB(t),
		Identity: casdoor.NewIdentityLocal(),
	})
}

func newResource(title, course string, typ models.ResourceType, submitter string) *models.Resource {
	return &models.Resource{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   title + " description",
		Type:          typ,
		CourseCode:    course,
		Status:        models.ResourcePending,
		SubmitterID:   submitter,
		SubmitterName: "Submitter " + submitter,
		SubmittedAt:   time.Now().UTC(),
	}
}

func newUser(id, username, email string, role models.UserRole) *models.User {
	return &models.User{
		ID:       id,
		AuthID:   id,
		Username: username,
		FullName: "User " + username,
		Email:    email,
		Role:     role,
	}
}
