package services

import (
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// PostInput is the author-editable part of a post. A nil ImageFile leaves
// the current image unchanged on update.
type PostInput struct {
	Title     string
	Content   string
	ImageFile *string
}

// ListQuery selects one page of posts, newest first.
type ListQuery struct {
	Search  string
	UserID  uint
	Page    int
	PerPage int
}

type PostService struct {
	db *gorm.DB
}

func NewPostService(conn *gorm.DB) *PostService {
	return &PostService{db: conn}
}

func (s *PostService) Create(userID uint, in PostInput) (*models.Post, error) {
	post := models.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		ImageFile: in.ImageFile,
		UserID:    userID,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Get loads a post with its author.
func (s *PostService) Get(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, id).Error; err != nil {
		return nil, notFound("post", err)
	}
	return &post, nil
}

// Update edits a post. Only its author may do this. The previous image name
// is returned when the image was replaced.
func (s *PostService) Update(id, userID uint, in PostInput) (*models.Post, string, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	if post.UserID != userID {
		return post, "", ErrForbidden
	}

	previous := ""
	updates := map[string]interface{}{
		"title":   strings.TrimSpace(in.Title),
		"content": in.Content,
	}
	if in.ImageFile != nil {
		if post.ImageFile != nil {
			previous = *post.ImageFile
		}
		updates["image_file"] = *in.ImageFile
	}

	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, "", fmt.Errorf("update post: %w", err)
	}
	return post, previous, nil
}

// Delete removes a post together with its reviews and their reactions in one
// transaction. Only the author may do this.
func (s *PostService) Delete(id, userID uint) (*models.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return post, ErrForbidden
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("post_id = ?", post.ID)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.ReviewReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return post, nil
}

// List returns one page of posts with authors loaded. A search term matches
// title or content, case-insensitively.
func (s *PostService) List(q ListQuery) ([]models.Post, *utils.Pagination, error) {
	query := s.db.Model(&models.Post{})
	if q.UserID != 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}

	var posts []models.Post
	p, err := utils.Paginate(query, q.Page, q.PerPage, &posts, newestFirst, withAuthor)
	if err != nil {
		return nil, nil, err
	}
	return posts, p, nil
}

// Latest returns the n most recent posts with authors.
func (s *PostService) Latest(n int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Scopes(newestFirst, withAuthor).Limit(n).Find(&posts).Error
	return posts, err
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date_posted DESC, id DESC")
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User")
}
