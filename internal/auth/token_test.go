package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/models"
)

func newIssuer(secret string) *TokenIssuer {
	return NewTokenIssuer(config.JWTConfig{Secret: secret, Issuer: "learning-portal", TTL: time.Hour})
}

func student() *models.User {
	return &models.User{ID: "1", FullName: "John Doe", Email: "john@example.com", Role: models.RoleStudent}
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := newIssuer("0123456789abcdef")

	token, issued, err := issuer.Issue(student())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.SessionID)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "1", got.UserID)
	assert.Equal(t, issued.SessionID, got.SessionID)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, models.RoleStudent, got.Role)
	assert.WithinDuration(t, issued.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := newIssuer("0123456789abcdef")
	token, _, err := issuer.Issue(student())
	require.NoError(t, err)

	expired := newIssuer("0123456789abcdef")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Issue(student())
	require.NoError(t, err)

	otherIssuer := NewTokenIssuer(config.JWTConfig{Secret: "0123456789abcdef", Issuer: "someone-else", TTL: time.Hour})
	foreignToken, _, err := otherIssuer.Issue(student())
	require.NoError(t, err)

	admin := student()
	admin.Role = models.RoleAdmin
	adminToken, _, err := issuer.Issue(admin)
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + strings.Split(adminToken, ".")[1] + "." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: "x", Subject: "1", Issuer: "learning-portal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		by    *TokenIssuer
	}{
		{name: "tampered", token: tampered, by: issuer},
		{name: "wrong secret", token: token, by: newIssuer("fedcba9876543210")},
		{name: "expired", token: oldToken, by: issuer},
		{name: "wrong issuer", token: foreignToken, by: issuer},
		{name: "alg none", token: unsigned, by: issuer},
		{name: "garbage", token: "not-a-token", by: issuer},
		{name: "empty", token: "", by: issuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.by.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIsAuthorized(t *testing.T) {
	studentSession := &Session{UserID: "1", Role: models.RoleStudent}
	adminSession := &Session{UserID: "3", Role: models.RoleAdmin}

	tests := []struct {
		name    string
		session *Session
		role    models.UserRole
		want    bool
	}{
		{name: "no session", session: nil, role: "", want: false},
		{name: "any session", session: studentSession, role: "", want: true},
		{name: "student area as student", session: studentSession, role: models.RoleStudent, want: true},
		{name: "admin area as student", session: studentSession, role: models.RoleAdmin, want: false},
		{name: "admin area as admin", session: adminSession, role: models.RoleAdmin, want: true},
		{name: "student area as admin", session: adminSession, role: models.RoleStudent, want: true},
		{name: "unknown required role", session: adminSession, role: "teacher", want: false},
		{name: "session with unknown role", session: &Session{UserID: "9", Role: "guest"}, role: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthorized(tt.session, tt.role))
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("", "password123"))
}
