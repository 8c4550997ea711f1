package handlers

import (
	"fmt"
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	env     *Env
	posts   *services.PostService
	reviews *services.ReviewService
}

func NewPostHandler(env *Env) *PostHandler {
	return &PostHandler{
		env:     env,
		posts:   services.NewPostService(db.DB),
		reviews: services.NewReviewService(db.DB),
	}
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "New Post", "/post/new", PostForm{}, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form PostForm
	if err := bindForm(c, &form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "New Post", "/post/new", form, formErrors(err))
		return
	}

	image, fieldErr, err := saveUpload(c, h.env.Images, "image", services.ImagePost)
	if err != nil {
		HandleError(c, err)
		return
	}
	if fieldErr != "" {
		h.renderForm(c, http.StatusBadRequest, "New Post", "/post/new", form, map[string]string{"image": fieldErr})
		return
	}

	in := services.PostInput{Title: form.Title, Content: form.Content}
	if image != "" {
		in.ImageFile = &image
	}
	if _, err := h.posts.Create(user.ID, in); err != nil {
		discardUpload(c, h.env.Images, image)
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashSuccess, "Your post has been created!")
	redirect(c, "/")
}

// Detail shows a post with its rendered content, reviews and rating.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.posts.Get(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	reviews, err := h.reviews.ListForPost(post.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	stats, err := h.reviews.Summary(post.ID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var mine *models.Review
	if user := middleware.CurrentUser(c); user != nil {
		if mine, err = h.reviews.UserReview(post.ID, user.ID); err != nil {
			HandleError(c, err)
			return
		}
	}

	Render(c, http.StatusOK, "posts/post.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Content":  utils.RenderMarkdownCached(postCacheKey(post.ID), post.UpdatedAt, post.Content),
		"Reviews":  reviews,
		"Stats":    stats,
		"MyReview": mine,
	})
}

func (h *PostHandler) ShowUpdate(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, "Update Post", fmt.Sprintf("/post/%d/update", post.ID),
		PostForm{Title: post.Title, Content: post.Content}, nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/post/%d/update", post.ID)

	var form PostForm
	if err := bindForm(c, &form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Update Post", action, form, formErrors(err))
		return
	}

	image, fieldErr, err := saveUpload(c, h.env.Images, "image", services.ImagePost)
	if err != nil {
		HandleError(c, err)
		return
	}
	if fieldErr != "" {
		h.renderForm(c, http.StatusBadRequest, "Update Post", action, form, map[string]string{"image": fieldErr})
		return
	}

	in := services.PostInput{Title: form.Title, Content: form.Content}
	if image != "" {
		in.ImageFile = &image
	}
	_, previous, err := h.posts.Update(post.ID, middleware.CurrentUser(c).ID, in)
	if err != nil {
		discardUpload(c, h.env.Images, image)
		HandleError(c, err)
		return
	}
	discardUpload(c, h.env.Images, previous)
	utils.ForgetMarkdown(postCacheKey(post.ID), post.UpdatedAt)

	flash(c, middleware.FlashSuccess, "Your post has been updated!")
	redirect(c, fmt.Sprintf("/post/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}

	post, err := h.posts.Delete(id, middleware.CurrentUser(c).ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if post.ImageFile != nil {
		discardUpload(c, h.env.Images, *post.ImageFile)
	}
	utils.ForgetMarkdown(postCacheKey(post.ID), post.UpdatedAt)

	flash(c, middleware.FlashSuccess, "Your post has been deleted!")
	redirect(c, "/")
}

// ownPost loads the post in the URL and checks the current user wrote it.
func (h *PostHandler) ownPost(c *gin.Context) (*models.Post, bool) {
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
	if post.UserID != middleware.CurrentUser(c).ID {
		RenderError(c, http.StatusForbidden, "")
		return nil, false
	}
	return post, true
}

func (h *PostHandler) renderForm(c *gin.Context, code int, legend, action string, form PostForm, errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	Render(c, code, "posts/create_post.html", gin.H{
		"Title":  legend,
		"Legend": legend,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

func postCacheKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}
