package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event. It doubles as the topic suffix.
type EventType string

const (
	ResourceSubmitted EventType = "resource.submitted"
	ResourceApproved  EventType = "resource.approved"
	ResourceRejected  EventType = "resource.rejected"
	UserSignedUp      EventType = "user.signed_up"
	UserRoleChanged   EventType = "user.role_changed"
	UserDeleted       EventType = "user.deleted"
)

const (
	EventSource  = "learning-portal-service"
	EventVersion = "1.0"
)

// Event is the envelope every published message carries.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps an envelope around data.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher delivers events to whoever listens. Publishing is best effort
// from the caller's point of view: a failed publish never undoes the state
// change that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== PAYLOADS =====

type ResourceSubmittedData struct {
	ResourceID  string `json:"resourceId"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	CourseCode  string `json:"course"`
	SubmitterID string `json:"submitterId"`
}

type ResourceDecidedData struct {
	ResourceID  string  `json:"resourceId"`
	Title       string  `json:"title"`
	SubmitterID string  `json:"submitterId"`
	DecidedBy   string  `json:"decidedBy"`
	Status      string  `json:"status"`
	Reason      *string `json:"reason,omitempty"`
}

type UserSignedUpData struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UserRoleChangedData struct {
	UserID    string `json:"userId"`
	OldRole   string `json:"oldRole"`
	NewRole   string `json:"newRole"`
	ChangedBy string `json:"changedBy"`
}

type UserDeletedData struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	DeletedBy string `json:"deletedBy"`
}
