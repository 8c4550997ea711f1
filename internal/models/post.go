package models

import (
	"math"
	"time"
)

type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageFile  *string   `gorm:"size:255" json:"image_file"`
	DatePosted time.Time `gorm:"not null;index;autoCreateTime" json:"date_posted"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Reviews    []Review  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviews,omitempty"`

	// Not persisted, filled in for list pages
	Rating RatingSummary `gorm:"-" json:"rating"`
}

// RatingSummary is an aggregate over a post's live review rows.
type RatingSummary struct {
	PostID  uint    `json:"post_id"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// RoundRating rounds an average to one decimal.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
