package models

import "time"

// NoteColors is the palette a new note's colour is drawn from.
var NoteColors = []string{
	"bg-blue-50",
	"bg-green-50",
	"bg-purple-50",
	"bg-orange-50",
	"bg-pink-50",
	"bg-yellow-50",
}

type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID   string    `json:"owner_id" gorm:"size:255;not null;index"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Content   string    `json:"content" gorm:"type:text"`
	Category  string    `json:"category" gorm:"size:100;index"`
	Color     string    `json:"color" gorm:"size:30"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}
