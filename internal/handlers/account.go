package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"inkwell/internal/db"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const PostsPerUserPage = 5

type AccountHandler struct {
	env     *Env
	users   *services.UserService
	posts   *services.PostService
	reviews *services.ReviewService
}

func NewAccountHandler(env *Env) *AccountHandler {
	return &AccountHandler{
		env:     env,
		users:   services.NewUserService(db.DB),
		posts:   services.NewPostService(db.DB),
		reviews: services.NewReviewService(db.DB),
	}
}

func (h *AccountHandler) ShowAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "auth/account.html", gin.H{
		"Title": "Account",
		"Form":  AccountForm{Username: user.Username, Email: user.Email},
	})
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form AccountForm
	if err := bindForm(c, &form); err != nil {
		Render(c, http.StatusBadRequest, "auth/account.html", gin.H{"Title": "Account", "Form": form, "Errors": formErrors(err)})
		return
	}

	picture, fieldErr, err := saveUpload(c, h.env.Images, "picture", services.ImageAvatar)
	if err != nil {
		HandleError(c, err)
		return
	}
	if fieldErr != "" {
		Render(c, http.StatusBadRequest, "auth/account.html", gin.H{
			"Title":  "Account",
			"Form":   form,
			"Errors": map[string]string{"picture": fieldErr},
		})
		return
	}

	previous, err := h.users.UpdateAccount(user, form.Username, form.Email, picture)
	if err != nil {
		discardUpload(c, h.env.Images, picture)

		fieldErrs := map[string]string{}
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			fieldErrs["username"] = "That username is taken. Please choose a different one."
		case errors.Is(err, services.ErrEmailTaken):
			fieldErrs["email"] = "That email is taken. Please choose a different one."
		default:
			HandleError(c, err)
			return
		}
		Render(c, http.StatusConflict, "auth/account.html", gin.H{"Title": "Account", "Form": form, "Errors": fieldErrs})
		return
	}
	discardUpload(c, h.env.Images, previous)

	flash(c, middleware.FlashSuccess, "Your account has been updated!")
	redirect(c, "/account")
}

// UserPosts lists one user's posts, newest first.
func (h *AccountHandler) UserPosts(c *gin.Context) {
	owner, err := h.users.GetByUsername(c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}

	posts, p, err := h.posts.List(services.ListQuery{
		UserID:  owner.ID,
		Page:    utils.ParsePage(c.Query("page")),
		PerPage: PostsPerUserPage,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if p.OutOfRange() {
		NotFound(c)
		return
	}
	if err := h.reviews.AttachRatings(posts); err != nil {
		HandleError(c, err)
		return
	}

	Render(c, http.StatusOK, "user_posts.html", gin.H{
		"Title":      owner.Username,
		"User":       owner,
		"Posts":      posts,
		"Pagination": p,
		"PageURL":    pageURL("/user/"+url.PathEscape(owner.Username), nil),
	})
}

// saveUpload stores the optional file in field. A non-empty fieldErr means
// the upload was rejected and should be shown next to the field.
func saveUpload(c *gin.Context, store services.ImageStore, field string, kind services.ImageKind) (name, fieldErr string, err error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", "", nil
		}
		return "", "", err
	}
	if header.Size > services.MaxImageSize {
		return "", services.ErrImageTooLarge.Error(), nil
	}

	file, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	name, err = store.Save(c.Request.Context(), file, header.Filename, kind)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			return "", "File does not have an approved extension: jpg, jpeg, png, gif", nil
		}
		return "", "", err
	}
	return name, "", nil
}

// discardUpload deletes a stored image, logging failures.
func discardUpload(c *gin.Context, store services.ImageStore, name string) {
	if name == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), name); err != nil {
		logger.L().Warn("Failed to delete image", zap.String("name", name), zap.Error(err))
	}
}
