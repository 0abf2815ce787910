package models

// AllModels lists every persisted type in dependency order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&SessionRecord{},
		&Course{},
		&Enrollment{},
		&Resource{},
		&ResourceReview{},
		&Note{},
		&AttendanceRecord{},
		&ClassSession{},
	}
}
