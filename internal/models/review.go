package models

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of one post. (UserID, PostID) is unique.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`
	DatePosted time.Time `gorm:"not null;autoCreateTime" json:"date_posted"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_review_user_post" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviewer"`
	PostID     uint      `gorm:"not null;index;uniqueIndex:idx_review_user_post" json:"post_id"`
	Post       Post      `json:"-"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	Dislikes   int       `gorm:"not null;default:0" json:"dislikes"`
}

// CommentText returns the comment or an empty string.
func (r *Review) CommentText() string {
	if r.Comment == nil {
		return ""
	}
	return *r.Comment
}

const (
	ReactionLike    = 1
	ReactionDislike = -1
)

// ReviewReaction records that a user already liked or disliked a review.
type ReviewReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"not null;index;uniqueIndex:idx_reaction_review_user" json:"review_id"`
	Review    Review    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_review_user" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}
