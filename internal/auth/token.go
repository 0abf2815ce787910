package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what a session token carries. The jti (RegisteredClaims.ID) names
// the persisted session row so a token can be revoked before it expires.
type Claims struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated identity attached to a request.
type Session struct {
	UserID    string          `json:"id"`
	SessionID string          `json:"-"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a token for user and returns it together with the session it
// describes.
func (t *TokenIssuer) Issue(user *models.User) (string, *Session, error) {
	now := t.now().UTC()
	session := &Session{
		UserID:    user.ID,
		SessionID: uuid.NewString(),
		Name:      user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: now.Add(t.ttl),
	}

	claims := Claims{
		Name:  session.Name,
		Email: session.Email,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.SessionID,
			Subject:   session.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, session, nil
}

// Verify checks signature, algorithm, issuer and expiry. Revocation is the
// caller's concern.
func (t *TokenIssuer) Verify(tokenStr string) (*Session, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IsAuthorized reports whether session may enter an area that requires role.
// An empty role only requires a session. The admin area admits admins only;
// the student area admits any signed-in student or admin.
func IsAuthorized(session *Session, role models.UserRole) bool {
	if session == nil || !session.Role.IsValid() {
		return false
	}
	switch role {
	case "":
		return true
	case models.RoleAdmin:
		return session.Role == models.RoleAdmin
	case models.RoleStudent:
		return true
	default:
		return false
	}
}
