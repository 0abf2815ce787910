package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-portal-service/internal/storage"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
	"github.com/SAP-F-2025/learning-portal-service/pkg"
)

// harness is a fully wired service layer over in-memory sqlite, miniredis
// and a temporary bolt file.
type harness struct {
	ctx       context.Context
	repo      *postgres.PostgreSQLRepository
	cache     *cache.CacheManager
	redis     *miniredis.Miniredis
	publisher *events.MockEventPublisher
	files     *storage.BoltStore
	tokens    *auth.TokenIssuer
	metrics   *metrics.Metrics
	manager   ServiceManager
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := pkg.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: client,
		Identity:    casdoor.NewIdentityLocal(),
	})

	files, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "files.db"))
	require.NoError(t, err)

	logger := discardLogger()
	h := &harness{
		ctx:       context.Background(),
		repo:      repo,
		cache:     repo.Cache(),
		redis:     mr,
		publisher: events.NewMockEventPublisher(logger),
		files:     files,
		tokens:    auth.NewTokenIssuer(config.JWTConfig{Secret: "test-secret-0123456789", Issuer: "test", TTL: time.Hour}),
		metrics:   metrics.New(),
	}
	h.manager = NewServiceManager(Dependencies{
		Repo:      repo,
		Tokens:    h.tokens,
		Cache:     h.cache,
		Publisher: h.publisher,
		Files:     files,
		Metrics:   h.metrics,
		Logger:    logger,
		Validator: validator.New(),
	}, ServiceManagerConfig{MaxUploadSize: 1 << 20})
	require.NoError(t, h.manager.Initialize(h.ctx))

	t.Cleanup(func() {
		_ = h.manager.Shutdown(context.Background())
	})
	return h
}

// addUser stores a user with a known password and returns it.
func (h *harness) addUser(t *testing.T, id, username string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:           id,
		AuthID:       id,
		Username:     username,
		FullName:     "User " + username,
		Email:        username + "@example.com",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, h.repo.User().Create(h.ctx, nil, user))
	return user
}

// login signs user in through the auth service and returns the verified session.
func (h *harness) login(t *testing.T, user *models.User) *auth.Session {
	t.Helper()
	resp, err := h.manager.Auth().Login(h.ctx, &models.LoginRequest{Username: user.Username, Password: "password123"}, ClientInfo{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	session, err := h.manager.Auth().Authenticate(h.ctx, resp.Token)
	require.NoError(t, err)
	return session
}

func ptr[T any](v T) *T { return &v }
