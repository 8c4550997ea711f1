package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	env   *Env
	users *services.UserService
}

func NewAuthHandler(env *Env) *AuthHandler {
	return &AuthHandler{
		env:   env,
		users: services.NewUserService(db.DB),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Register", "Form": RegisterForm{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}

	var form RegisterForm
	if err := bindForm(c, &form); err != nil {
		form.Password, form.ConfirmPassword = "", ""
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Title": "Register", "Form": form, "Errors": formErrors(err)})
		return
	}

	if _, err := h.users.CreateUser(form.Username, form.Email, form.Password); err != nil {
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
		form.Password, form.ConfirmPassword = "", ""
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Title": "Register", "Form": form, "Errors": fieldErrs})
		return
	}

	flash(c, middleware.FlashSuccess, "Your account has been created! You are now able to log in")
	redirect(c, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title": "Login",
		"Form":  LoginForm{},
		"Next":  safeNext(c.Query("next")),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}

	next := safeNext(c.Query("next"))
	var form LoginForm
	if err := bindForm(c, &form); err != nil {
		form.Password = ""
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Title": "Login", "Form": form, "Next": next, "Errors": formErrors(err)})
		return
	}

	user, err := h.users.Authenticate(form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			HandleError(c, err)
			return
		}
		form.Password = ""
		flash(c, middleware.FlashDanger, "Login Unsuccessful. Please check email and password")
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Title": "Login", "Form": form, "Next": next})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(middleware.SessionOptions(form.Remember))
	session.Set(middleware.SessionUserID, user.ID)
	session.Set(middleware.SessionRemember, form.Remember)
	if err := session.Save(); err != nil {
		HandleError(c, err)
		return
	}

	if next == "" {
		next = "/"
	}
	redirect(c, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	opts := middleware.SessionOptions(false)
	opts.MaxAge = -1
	session.Options(opts)
	session.Save()
	redirect(c, "/")
}

func (h *AuthHandler) ShowResetRequest(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}
	Render(c, http.StatusOK, "auth/reset_request.html", gin.H{"Title": "Reset Password", "Form": RequestResetForm{}})
}

func (h *AuthHandler) ResetRequest(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}

	var form RequestResetForm
	if err := bindForm(c, &form); err != nil {
		Render(c, http.StatusBadRequest, "auth/reset_request.html", gin.H{"Title": "Reset Password", "Form": form, "Errors": formErrors(err)})
		return
	}

	user, err := h.users.GetByEmail(form.Email)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			HandleError(c, err)
			return
		}
		Render(c, http.StatusBadRequest, "auth/reset_request.html", gin.H{
			"Title":  "Reset Password",
			"Form":   form,
			"Errors": map[string]string{"email": "There is no account with that email. You must register first."},
		})
		return
	}

	token, err := h.env.Tokens.ResetToken(user.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.env.Mail.SendPasswordReset(user, h.env.SiteURL+"/reset_password/"+token); err != nil {
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashInfo, "An email has been sent with instructions to reset your password.")
	redirect(c, "/login")
}

func (h *AuthHandler) ShowResetToken(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}
	if _, ok := h.verifyToken(c); !ok {
		return
	}
	Render(c, http.StatusOK, "auth/reset_token.html", gin.H{"Title": "Reset Password", "Token": c.Param("token"), "Form": ResetPasswordForm{}})
}

func (h *AuthHandler) ResetToken(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		redirect(c, "/")
		return
	}
	userID, ok := h.verifyToken(c)
	if !ok {
		return
	}

	var form ResetPasswordForm
	if err := bindForm(c, &form); err != nil {
		Render(c, http.StatusBadRequest, "auth/reset_token.html", gin.H{
			"Title":  "Reset Password",
			"Token":  c.Param("token"),
			"Form":   ResetPasswordForm{},
			"Errors": formErrors(err),
		})
		return
	}

	if err := h.users.SetPassword(userID, form.Password); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.invalidToken(c)
			return
		}
		HandleError(c, err)
		return
	}

	flash(c, middleware.FlashSuccess, "Your password has been updated! You are now able to log in")
	redirect(c, "/login")
}

func (h *AuthHandler) verifyToken(c *gin.Context) (uint, bool) {
	userID, err := h.env.Tokens.VerifyResetToken(c.Param("token"))
	if err != nil {
		h.invalidToken(c)
		return 0, false
	}
	return userID, true
}

func (h *AuthHandler) invalidToken(c *gin.Context) {
	flash(c, middleware.FlashWarning, "That is an invalid or expired token")
	redirect(c, "/reset_password")
}
