package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

type AttendanceRecord struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	StudentID  string           `json:"student_id" gorm:"size:255;not null;index"`
	CourseCode string           `json:"course_code" gorm:"size:20;not null;index"`
	CourseName string           `json:"course_name" gorm:"size:200"`
	Date       time.Time        `json:"date" gorm:"type:date;index"`
	Status     AttendanceStatus `json:"status" gorm:"size:10;not null"`
	Time       *string          `json:"time,omitempty" gorm:"size:10"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
