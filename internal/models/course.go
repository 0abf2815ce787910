package models

import "time"

const DefaultCourseCredits = 3

type Course struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Code       string    `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Name       string    `json:"name" gorm:"size:200;not null"`
	Instructor string    `json:"instructor" gorm:"size:100"`
	Credits    int       `json:"credits" gorm:"default:3"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a user to a course. The composite key makes a second
// enrollment in the same course impossible at the storage level.
type Enrollment struct {
	UserID     string    `json:"user_id" gorm:"primaryKey;size:255"`
	CourseID   string    `json:"course_id" gorm:"primaryKey;size:36"`
	EnrolledAt time.Time `json:"enrolled_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
