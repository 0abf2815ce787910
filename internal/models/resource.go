package models

import (
	"time"

	"gorm.io/datatypes"
)

type ResourceStatus string

const (
	ResourcePending  ResourceStatus = "pending"
	ResourceApproved ResourceStatus = "approved"
	ResourceRejected ResourceStatus = "rejected"
)

// IsTerminal reports whether no further decision may be taken.
func (s ResourceStatus) IsTerminal() bool {
	return s == ResourceApproved || s == ResourceRejected
}

type ResourceType string

const (
	ResourcePDF      ResourceType = "pdf"
	ResourceVideo    ResourceType = "video"
	ResourceDocument ResourceType = "document"
)

var ResourceTypes = []ResourceType{ResourcePDF, ResourceVideo, ResourceDocument}

// Resource is a submitted learning material. There is exactly one row per
// submission; the admin queue, submitter history and approved browser are
// all queries over this table.
type Resource struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"`
	Title         string         `json:"title" gorm:"not null;size:200"`
	Description   string         `json:"description" gorm:"type:text"`
	Type          ResourceType   `json:"type" gorm:"size:20;not null;index"`
	CourseCode    string         `json:"course_code" gorm:"size:20;not null;index"`
	Status        ResourceStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	SubmitterID   string         `json:"submitter_id" gorm:"size:255;not null;index"`
	SubmitterName string         `json:"submitter_name" gorm:"size:100"`
	SubmittedAt   time.Time      `json:"submitted_at" gorm:"index"`

	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecidedBy    *string    `json:"decided_by,omitempty" gorm:"size:255"`
	DecisionNote *string    `json:"decision_note,omitempty" gorm:"size:500"`

	FileKey     *string `json:"-" gorm:"size:255"`
	FileName    *string `json:"file_name,omitempty" gorm:"size:255"`
	FileSize    int64   `json:"file_size"`
	ContentType *string `json:"content_type,omitempty" gorm:"size:100"`

	Views     int64 `json:"views" gorm:"default:0"`
	Downloads int64 `json:"downloads" gorm:"default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

func (r *Resource) HasFile() bool {
	return r.FileKey != nil && *r.FileKey != ""
}

// ResourceReview is the append-only audit trail of decisions.
type ResourceReview struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ResourceID string         `json:"resource_id" gorm:"size:36;not null;index"`
	ReviewerID string         `json:"reviewer_id" gorm:"size:255;not null"`
	FromStatus ResourceStatus `json:"from_status" gorm:"size:20"`
	ToStatus   ResourceStatus `json:"to_status" gorm:"size:20"`
	Detail     datatypes.JSON `json:"detail"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (ResourceReview) TableName() string {
	return "resource_reviews"
}
