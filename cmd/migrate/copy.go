package main

import (
	"fmt"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 100

// sourceData is everything read from the SQLite file.
type sourceData struct {
	Users     []models.User
	Posts     []models.Post
	Reviews   []models.Review
	Reactions []models.ReviewReaction

	// DuplicateReviews counts legacy reviews dropped because the same user
	// had already reviewed the same post.
	DuplicateReviews int
}

// Table layout written by the earlier Flask version of the blog.
type legacyUser struct {
	ID        uint
	Username  string
	Email     string
	ImageFile string
	Password  string
}

type legacyPost struct {
	ID         uint
	Title      string
	DatePosted time.Time
	Content    string
	UserID     uint
	ImageFile  *string
}

type legacyReview struct {
	ID         uint
	Rating     int
	Comment    *string
	DatePosted time.Time
	UserID     uint
	PostID     uint
	Likes      int
	Dislikes   int
}

// readSource loads rows from either the current schema or the legacy one.
func readSource(src *gorm.DB) (*sourceData, error) {
	if src.Migrator().HasTable(&models.User{}) {
		return readCurrent(src)
	}
	if src.Migrator().HasTable("user") {
		return readLegacy(src)
	}
	return nil, fmt.Errorf("no user table found")
}

func readCurrent(src *gorm.DB) (*sourceData, error) {
	data := &sourceData{}
	if err := src.Order("id").Find(&data.Users).Error; err != nil {
		return nil, err
	}
	if err := src.Order("id").Find(&data.Posts).Error; err != nil {
		return nil, err
	}
	if err := src.Order("id").Find(&data.Reviews).Error; err != nil {
		return nil, err
	}
	if src.Migrator().HasTable(&models.ReviewReaction{}) {
		if err := src.Order("id").Find(&data.Reactions).Error; err != nil {
			return nil, err
		}
	}
	return data, nil
}

func readLegacy(src *gorm.DB) (*sourceData, error) {
	var users []legacyUser
	if err := src.Table("user").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	var posts []legacyPost
	if err := src.Table("post").Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	var reviews []legacyReview
	if src.Migrator().HasTable("review") {
		if err := src.Table("review").Order("id").Find(&reviews).Error; err != nil {
			return nil, err
		}
	}

	data := &sourceData{}
	for _, u := range users {
		image := u.ImageFile
		if image == "" {
			image = models.DefaultImageFile
		}
		data.Users = append(data.Users, models.User{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			ImageFile: image,
			Password:  u.Password,
		})
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, models.Post{
			ID:         p.ID,
			Title:      p.Title,
			Content:    p.Content,
			ImageFile:  p.ImageFile,
			DatePosted: p.DatePosted,
			UpdatedAt:  p.DatePosted,
			UserID:     p.UserID,
		})
	}
	reviews, data.DuplicateReviews = latestReviews(reviews)
	for _, r := range reviews {
		data.Reviews = append(data.Reviews, models.Review{
			ID:         r.ID,
			Rating:     r.Rating,
			Comment:    r.Comment,
			DatePosted: r.DatePosted,
			UserID:     r.UserID,
			PostID:     r.PostID,
			Likes:      r.Likes,
			Dislikes:   r.Dislikes,
		})
	}
	return data, nil
}

type reviewKey struct {
	UserID uint
	PostID uint
}

// latestReviews keeps the newest review per (user, post), by date then id,
// preserving id order. It returns the kept rows and how many were dropped.
func latestReviews(reviews []legacyReview) ([]legacyReview, int) {
	newest := make(map[reviewKey]legacyReview, len(reviews))
	for _, r := range reviews {
		key := reviewKey{r.UserID, r.PostID}
		cur, seen := newest[key]
		if !seen || r.DatePosted.After(cur.DatePosted) ||
			(r.DatePosted.Equal(cur.DatePosted) && r.ID > cur.ID) {
			newest[key] = r
		}
	}

	kept := make([]legacyReview, 0, len(newest))
	for _, r := range reviews {
		if newest[reviewKey{r.UserID, r.PostID}].ID == r.ID {
			kept = append(kept, r)
		}
	}
	return kept, len(reviews) - len(kept)
}

// copyRows inserts everything in one transaction, keeping ids.
func copyRows(dst *gorm.DB, data *sourceData) error {
	return dst.Transaction(func(tx *gorm.DB) error {
		if len(data.Users) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&data.Users, batchSize).Error; err != nil {
				return fmt.Errorf("users: %w", err)
			}
		}
		if len(data.Posts) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&data.Posts, batchSize).Error; err != nil {
				return fmt.Errorf("posts: %w", err)
			}
		}
		if len(data.Reviews) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&data.Reviews, batchSize).Error; err != nil {
				return fmt.Errorf("reviews: %w", err)
			}
		}
		if len(data.Reactions) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&data.Reactions, batchSize).Error; err != nil {
				return fmt.Errorf("reactions: %w", err)
			}
		}
		return resetSequences(tx)
	})
}

// resetSequences moves PostgreSQL id sequences past the copied ids.
// MySQL adjusts AUTO_INCREMENT on its own.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"users", "posts", "reviews", "review_reactions"} {
		sql := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)", table)
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
