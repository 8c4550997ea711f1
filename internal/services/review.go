package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ReviewInput is the editable part of a review. An empty comment is stored as NULL.
type ReviewInput struct {
	Rating  int
	Comment string
}

// Comment length bounds, counted in characters after trimming.
const (
	MinCommentLength = 10
	MaxCommentLength = 500
)

func (in ReviewInput) validate() error {
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return ErrInvalidRating
	}
	if c := in.comment(); c != nil {
		if n := utf8.RuneCountInString(*c); n < MinCommentLength || n > MaxCommentLength {
			return ErrInvalidComment
		}
	}
	return nil
}

func (in ReviewInput) comment() *string {
	c := strings.TrimSpace(in.Comment)
	if c == "" {
		return nil
	}
	return &c
}

// ReactionResult carries a review's counters after a like or dislike.
type ReactionResult struct {
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
	Already  bool `json:"already"`
}

// StarBucket is one row of a post's rating histogram.
type StarBucket struct {
	Stars   int
	Count   int64
	Percent int
}

// RatingStats is a post's live rating aggregate plus its histogram, 5 stars first.
type RatingStats struct {
	models.RatingSummary
	Histogram []StarBucket
}

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(conn *gorm.DB) *ReviewService {
	return &ReviewService{db: conn}
}

// AddReview creates userID's review of postID. A user reviews a post at most once.
func (s *ReviewService) AddReview(postID, userID uint, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var post models.Post
	if err := s.db.Select("id").First(&post, postID).Error; err != nil {
		return nil, notFound("post", err)
	}

	reviewed, err := s.HasReviewed(postID, userID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, ErrAlreadyReviewed
	}

	review := models.Review{
		Rating:  in.Rating,
		Comment: in.comment(),
		UserID:  userID,
		PostID:  postID,
	}
	if err := s.db.Create(&review).Error; err != nil {
		// concurrent double submit lost the race against the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

// GetReview loads a review with its reviewer and post.
func (s *ReviewService) GetReview(id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("User").Preload("Post").First(&review, id).Error; err != nil {
		return nil, notFound("review", err)
	}
	return &review, nil
}

// UpdateReview changes rating and comment. Only the reviewer may do this.
func (s *ReviewService) UpdateReview(id, userID uint, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	review, err := s.GetReview(id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return review, ErrForbidden
	}

	review.Rating = in.Rating
	review.Comment = in.comment()
	if err := s.db.Model(&models.Review{}).Where("id = ?", review.ID).
		Updates(map[string]interface{}{"rating": review.Rating, "comment": review.Comment}).Error; err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review and its reactions. The reviewer and the
// author of the reviewed post are both allowed to delete it.
func (s *ReviewService) DeleteReview(id, userID uint) (*models.Review, error) {
	review, err := s.GetReview(id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID && review.Post.UserID != userID {
		return review, ErrForbidden
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.ReviewReaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, review.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete review: %w", err)
	}
	return review, nil
}

var errAlreadyReacted = errors.New("already reacted")

// React records a like (value 1) or dislike (value -1). Only a user's first
// reaction to a review counts; later ones report the unchanged counters.
func (s *ReviewService) React(reviewID, userID uint, value int) (*ReactionResult, error) {
	column := "likes"
	switch value {
	case models.ReactionLike:
	case models.ReactionDislike:
		column = "dislikes"
	default:
		return nil, fmt.Errorf("unknown reaction %d", value)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Select("id").First(&review, reviewID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ReviewReaction{}).
			Where("review_id = ? AND user_id = ?", reviewID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyReacted
		}

		reaction := models.ReviewReaction{ReviewID: reviewID, UserID: userID, Value: value}
		if err := tx.Create(&reaction).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyReacted
			}
			return err
		}

		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
	})

	already := errors.Is(err, errAlreadyReacted)
	if err != nil && !already {
		return nil, notFound("review", err)
	}

	var review models.Review
	if err := s.db.Select("id", "likes", "dislikes").First(&review, reviewID).Error; err != nil {
		return nil, notFound("review", err)
	}
	return &ReactionResult{Likes: review.Likes, Dislikes: review.Dislikes, Already: already}, nil
}

// ListForPost returns a post's reviews, newest first, with reviewers loaded.
func (s *ReviewService) ListForPost(postID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("User").
		Where("post_id = ?", postID).
		Order("date_posted DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

// HasReviewed reports whether userID already reviewed postID.
func (s *ReviewService) HasReviewed(postID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Review{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// UserReview returns userID's review of postID, or nil when there is none.
func (s *ReviewService) UserReview(postID, userID uint) (*models.Review, error) {
	var reviews []models.Review
	if err := s.db.Where("post_id = ? AND user_id = ?", postID, userID).Limit(1).Find(&reviews).Error; err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return &reviews[0], nil
}

type ratingCount struct {
	Rating int
	Count  int64
}

// Summary aggregates a post's reviews as they are right now.
func (s *ReviewService) Summary(postID uint) (*RatingStats, error) {
	var rows []ratingCount
	if err := s.db.Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byStars := make(map[int]int64, len(rows))
	var total, sum int64
	for _, r := range rows {
		byStars[r.Rating] = r.Count
		total += r.Count
		sum += int64(r.Rating) * r.Count
	}

	stats := &RatingStats{RatingSummary: models.RatingSummary{PostID: postID, Count: total}}
	if total > 0 {
		stats.Average = models.RoundRating(float64(sum) / float64(total))
	}
	for stars := models.MaxRating; stars >= models.MinRating; stars-- {
		bucket := StarBucket{Stars: stars, Count: byStars[stars]}
		if total > 0 {
			bucket.Percent = int(math.Round(float64(bucket.Count) * 100 / float64(total)))
		}
		stats.Histogram = append(stats.Histogram, bucket)
	}
	return stats, nil
}

// RatingSummaries computes count and mean rating for each post in one query.
// Posts without reviews are absent from the result.
func (s *ReviewService) RatingSummaries(postIDs []uint) (map[uint]models.RatingSummary, error) {
	result := make(map[uint]models.RatingSummary, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []models.RatingSummary
	if err := s.db.Model(&models.Review{}).
		Select("post_id, COUNT(*) AS count, AVG(rating) AS average").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		r.Average = models.RoundRating(r.Average)
		result[r.PostID] = r
	}
	return result, nil
}

// AttachRatings fills Post.Rating for a page of posts.
func (s *ReviewService) AttachRatings(posts []models.Post) error {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	summaries, err := s.RatingSummaries(ids)
	if err != nil {
		return err
	}
	for i := range posts {
		summary := summaries[posts[i].ID]
		summary.PostID = posts[i].ID
		posts[i].Rating = summary
	}
	return nil
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
