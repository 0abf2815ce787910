package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is a portal account. ID is either the identity provider's id or the
// custom id chosen at signup; AuthID always holds the provider's id.
type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:255"`
	AuthID       string   `json:"-" gorm:"size:255;index"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	FullName     string   `json:"full_name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	StudentID    *string  `json:"student_id,omitempty" gorm:"size:50"`
	Role         UserRole `json:"role" gorm:"size:20;not null;default:student;index"`
	PasswordHash string   `json:"-" gorm:"size:255"`

	Phone   *string `json:"phone,omitempty" gorm:"size:50"`
	Address *string `json:"address,omitempty" gorm:"size:255"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Enrollments []Enrollment `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SessionRecord is the server-side half of an issued token. A token is only
// honoured while its record exists, is not revoked and has not expired.
type SessionRecord struct {
	ID        string     `json:"id" gorm:"primaryKey;size:64"`
	UserID    string     `json:"user_id" gorm:"size:255;not null;index"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UserAgent string     `json:"user_agent" gorm:"size:255"`
	ClientIP  string     `json:"client_ip" gorm:"size:64"`
}

func (SessionRecord) TableName() string {
	return "sessions"
}

func (s *SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
