package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-portal-service/internal/auth"
	"github.com/SAP-F-2025/learning-portal-service/internal/events"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*SignupResponse, error) {
	if missing := missingSignupFields(req); len(missing) > 0 {
		return nil, invalidf("Missing required fields", missing...)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, invalidf("Email already registered", validator.ValidationError{Field: "email", Message: "is already registered"})
	}

	var profileID string
	if req.UseCustomID {
		profileID = strings.TrimSpace(req.CustomUserID)
		taken, err := s.repo.User().ExistsByID(ctx, nil, profileID)
		if err != nil {
			return nil, fmt.Errorf("failed to check user id: %w", err)
		}
		if taken {
			return nil, invalidf("User ID already taken", validator.ValidationError{Field: "customUserId", Message: "is already taken"})
		}
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	identity := s.repo.Identity()
	authID, err := identity.CreateIdentity(ctx, repositories.IdentitySpec{
		Username:    username,
		DisplayName: strings.TrimSpace(req.FullName),
		Email:       email,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrIdentityUnavailable):
			return nil, &ServiceUnavailableError{Service: identity.Name(), Err: err}
		case errors.Is(err, repositories.ErrIdentityRejected):
			return nil, invalidf(err.Error())
		default:
			return nil, fmt.Errorf("failed to create identity: %w", err)
		}
	}
	if profileID == "" {
		profileID = authID
	}

	user := &models.User{
		ID:           profileID,
		AuthID:       authID,
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		StudentID:    optionalString(req.StudentID),
		Role:         models.RoleStudent,
		PasswordHash: hash,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		s.logger.Error("Failed to create user profile", "auth_id", authID, "error", err)
		// Leave no orphaned account in the identity service.
		if derr := identity.DeleteIdentity(ctx, authID); derr != nil {
			s.logger.Warn("Failed to roll back identity", "auth_id", authID, "error", derr)
		}
		return nil, invalidf("Failed to create user profile")
	}

	publish(ctx, s.publisher, s.logger, events.UserSignedUp, events.UserSignedUpData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	s.logger.Info("User signed up", "user_id", user.ID, "identity", identity.Name())

	return &SignupResponse{
		Message: "Account created successfully",
		User:    toSessionUser(user),
	}, nil
}

func missingSignupFields(req *models.SignupRequest) []validator.ValidationError {
	var missing []validator.ValidationError
	for _, f := range []struct{ name, value string }{
		{"fullName", req.FullName},
		{"email", req.Email},
		{"password", req.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, validator.ValidationError{Field: f.name, Message: "is required", Rule: "required"})
		}
	}
	return missing
}

// availableUsername picks the email's local part, adding a numeric suffix
// when that name is taken.
func (s *authService) availableUsername(ctx context.Context, email string) (string, error) {
	base := usernameFromEmail(email)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 2; i <= 20; i++ {
		taken, err := s.repo.User().ExistsByUsername(ctx, nil, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// publish sends an event without failing the caller; the state change that
// produced it has already been committed.
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
