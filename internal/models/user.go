package models

import (
	"time"
)

const DefaultImageFile = "default.jpg"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	ImageFile string    `gorm:"size:255;not null;default:'default.jpg'" json:"image_file"` // local name or remote URL
	Password  string    `gorm:"size:60;not null" json:"-"`                                 // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
