package models

import "time"

// Weekdays in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ClassSession is one weekly recurring class slot. Times are "HH:MM".
type ClassSession struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Course     string    `json:"course" gorm:"size:200;not null"`
	CourseCode string    `json:"course_code" gorm:"size:20;not null;index"`
	Day        string    `json:"day" gorm:"size:10;not null;index"`
	StartTime  string    `json:"start_time" gorm:"size:5;not null"`
	EndTime    string    `json:"end_time" gorm:"size:5;not null"`
	Room       string    `json:"room" gorm:"size:50"`
	Instructor string    `json:"instructor" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ClassSession) TableName() string {
	return "class_sessions"
}
