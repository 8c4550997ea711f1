package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type RegisterForm struct {
	Username        string `form:"username" binding:"required,min=2,max=20"`
	Email           string `form:"email" binding:"required,email,max=120"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}

type AccountForm struct {
	Username string `form:"username" binding:"required,min=2,max=20"`
	Email    string `form:"email" binding:"required,email,max=120"`
}

type RequestResetForm struct {
	Email string `form:"email" binding:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type PostForm struct {
	Title   string `form:"title" binding:"required,max=100"`
	Content string `form:"content" binding:"required"`
}

type ReviewForm struct {
	Rating  int    `form:"rating" binding:"required,min=1,max=5"`
	Comment string `form:"comment" binding:"omitempty,min=10,max=500"`
}

type ratingChoice struct {
	Value int
	Label string
}

// normalizer is implemented by forms that clean their input before validation.
type normalizer interface {
	normalize()
}

func (f *RegisterForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *LoginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *AccountForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *RequestResetForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *PostForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

func (f *ReviewForm) normalize() {
	f.Comment = strings.TrimSpace(f.Comment)
}

// bindForm maps the request into form, trims it, then validates. Lengths
// are checked on the trimmed values that will be stored.
func bindForm(c *gin.Context, form any) error {
	err := c.ShouldBind(form)
	var ve validator.ValidationErrors
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	if n, ok := form.(normalizer); ok {
		n.normalize()
	}
	return binding.Validator.ValidateStruct(form)
}

var ratingChoices = []ratingChoice{
	{5, "5 Stars - Excellent"},
	{4, "4 Stars - Very Good"},
	{3, "3 Stars - Good"},
	{2, "2 Stars - Fair"},
	{1, "1 Star - Poor"},
}

func init() {
	// report fields by their form names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// formErrors turns a binding error into per-field messages keyed by form name.
func formErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["form"] = "The form could not be read. Please check your input."
		return out
	}
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Field must be equal to password."
	case "min":
		if isString {
			return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
		}
		return fmt.Sprintf("Number must be at least %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Number must be at most %s.", fe.Param())
	}
	return "Invalid value."
}
