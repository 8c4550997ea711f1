package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	posts   *services.PostService
	reviews *services.ReviewService
}

func NewReviewHandler() *ReviewHandler {
	return &ReviewHandler{
		posts:   services.NewPostService(db.DB),
		reviews: services.NewReviewService(db.DB),
	}
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}

func (h *ReviewHandler) ShowCreate(c *gin.Context) {
	post, ok := h.reviewablePost(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, post, "Add Review", fmt.Sprintf("/post/%d/review", post.ID), ReviewForm{}, nil)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	post, ok := h.reviewablePost(c)
	if !ok {
		return
	}

	var form ReviewForm
	if err := bindForm(c, &form); err != nil {
		h.renderForm(c, http.StatusBadRequest, post, "Add Review", fmt.Sprintf("/post/%d/review", post.ID), form, reviewFormErrors(err))
		return
	}

	user := middleware.CurrentUser(c)
	_, err := h.reviews.AddReview(post.ID, user.ID, services.ReviewInput{Rating: form.Rating, Comment: form.Comment})
	if err != nil {
		if errors.Is(err, services.ErrAlreadyReviewed) {
			alreadyReviewed(c, post.ID)
			return
		}
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashSuccess, "Your review has been added successfully!")
	redirect(c, postURL(post.ID))
}

func (h *ReviewHandler) ShowEdit(c *gin.Context) {
	review, ok := h.ownReview(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, &review.Post, "Edit Review", fmt.Sprintf("/review/%d/edit", review.ID),
		ReviewForm{Rating: review.Rating, Comment: review.CommentText()}, nil)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	review, ok := h.ownReview(c)
	if !ok {
		return
	}

	var form ReviewForm
	if err := bindForm(c, &form); err != nil {
		h.renderForm(c, http.StatusBadRequest, &review.Post, "Edit Review", fmt.Sprintf("/review/%d/edit", review.ID), form, reviewFormErrors(err))
		return
	}

	user := middleware.CurrentUser(c)
	if _, err := h.reviews.UpdateReview(review.ID, user.ID, services.ReviewInput{Rating: form.Rating, Comment: form.Comment}); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			flash(c, middleware.FlashDanger, "You can only edit your own reviews.")
			redirect(c, postURL(review.PostID))
			return
		}
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashSuccess, "Your review has been updated!")
	redirect(c, postURL(review.PostID))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}

	user := middleware.CurrentUser(c)
	review, err := h.reviews.DeleteReview(id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			flash(c, middleware.FlashDanger, "You can only delete your own reviews.")
			redirect(c, postURL(review.PostID))
			return
		}
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashSuccess, "Review has been deleted.")
	redirect(c, postURL(review.PostID))
}

func (h *ReviewHandler) Like(c *gin.Context) {
	h.react(c, models.ReactionLike)
}

func (h *ReviewHandler) Dislike(c *gin.Context) {
	h.react(c, models.ReactionDislike)
}

func (h *ReviewHandler) react(c *gin.Context, value int) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Review not found"})
		return
	}

	res, err := h.reviews.React(id, middleware.CurrentUser(c).ID, value)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Review not found"})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not record your reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"likes":    res.Likes,
		"dislikes": res.Dislikes,
		"already":  res.Already,
	})
}

// reviewablePost loads the post in the URL and bounces users who already reviewed it.
func (h *ReviewHandler) reviewablePost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := h.posts.Get(id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}

	reviewed, err := h.reviews.HasReviewed(post.ID, middleware.CurrentUser(c).ID)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if reviewed {
		alreadyReviewed(c, post.ID)
		return nil, false
	}
	return post, true
}

// ownReview loads the review in the URL and checks the current user wrote it.
func (h *ReviewHandler) ownReview(c *gin.Context) (*models.Review, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	review, err := h.reviews.GetReview(id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if review.UserID != middleware.CurrentUser(c).ID {
		flash(c, middleware.FlashDanger, "You can only edit your own reviews.")
		redirect(c, postURL(review.PostID))
		return nil, false
	}
	return review, true
}

func alreadyReviewed(c *gin.Context, postID uint) {
	flash(c, middleware.FlashInfo, "You have already reviewed this post. You can edit your existing review.")
	redirect(c, postURL(postID))
}

func reviewFormErrors(err error) map[string]string {
	errs := formErrors(err)
	if _, ok := errs["form"]; ok {
		// non-numeric rating
		delete(errs, "form")
		errs["rating"] = "Not a valid choice."
	}
	if _, ok := errs["comment"]; ok {
		errs["comment"] = "Field must be between 10 and 500 characters long."
	}
	return errs
}

func (h *ReviewHandler) renderForm(c *gin.Context, code int, post *models.Post, legend, action string, form ReviewForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	Render(c, code, "reviews/create_review.html", gin.H{
		"Title":         legend,
		"Legend":        legend,
		"Action":        action,
		"Post":          post,
		"Form":          form,
		"Errors":        errs,
		"RatingChoices": ratingChoices,
	})
}
