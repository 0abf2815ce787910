package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/cache"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/metrics"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

// Cached session states.
const (
	sessionActive  = "active"
	sessionRevoked = "revoked"
)

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenIssuer
	cache     *cache.CacheManager
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(
	repo repositories.Repository,
	tokens *auth.TokenIssuer,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		cache:     cm,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== LOGIN / LOGOUT =====

func (s *authService) Login(ctx context.Context, req *models.LoginRequest, client ClientInfo) (*LoginResponse, error) {
	// Empty credentials never reach the store.
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.repo.User().GetByLogin(ctx, nil, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.metrics.ObserveLogin(false)
			s.logger.Info("Login rejected", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.metrics.ObserveLogin(false)
		s.logger.Info("Login rejected", "reason", "bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, session, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &models.SessionRecord{
		ID:        session.SessionID,
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: session.ExpiresAt,
		UserAgent: truncate(client.UserAgent, 255),
		ClientIP:  client.IP,
	}
	if err := s.repo.Session().Create(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.repo.User().TouchLastLogin(ctx, nil, user.ID, now); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	s.metrics.ObserveLogin(true)
	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResponse{
		Token:     token,
		User:      toSessionUser(user),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, session *auth.Session) error {
	if session == nil {
		return ErrUnauthorized
	}

	err := s.repo.Session().Revoke(ctx, nil, session.SessionID, s.now().UTC())
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.markRevoked(ctx, session.SessionID, session.ExpiresAt)

	s.logger.Info("User logged out", "user_id", session.UserID)
	return nil
}

// ===== TOKEN VERIFICATION =====

func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if state, err := s.cache.Session.GetString(ctx, session.SessionID); err == nil {
		if state == sessionActive {
			return session, nil
		}
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	}

	record, err := s.repo.Session().GetByID(ctx, nil, session.SessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.markRevoked(ctx, session.SessionID, session.ExpiresAt)
			return nil, fmt.Errorf("%w: unknown session", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now().UTC()
	if !record.Active(now) || record.UserID != session.UserID {
		s.markRevoked(ctx, session.SessionID, session.ExpiresAt)
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	}

	ttl := cache.SessionCacheConfig.TTL
	if remaining := record.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if err := s.cache.Session.SetString(ctx, session.SessionID, sessionActive, ttl); err != nil {
		s.logger.Warn("Failed to cache session state", "error", err)
	}
	return session, nil
}

func (s *authService) Me(ctx context.Context, session *auth.Session) (*SessionUser, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.User().GetByID(ctx, nil, session.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toSessionUser(user), nil
}

// markRevoked remembers a dead session until its token would have expired
// anyway, so revoked tokens are refused without a database hit.
func (s *authService) markRevoked(ctx context.Context, sessionID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Session.SetString(ctx, sessionID, sessionRevoked, ttl); err != nil {
		s.logger.Warn("Failed to cache revoked session", "session_id", sessionID, "error", err)
	}
}

// ===== HELPERS =====

func toSessionUser(u *models.User) *SessionUser {
	return &SessionUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		StudentID: u.StudentID,
		Role:      u.Role,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// usernameFromEmail derives a login name from the local part of an email.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	return local
}
