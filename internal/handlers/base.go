package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Env carries the collaborators handlers need besides the database.
type Env struct {
	SiteURL string
	Mail    *services.MailService
	Tokens  *services.TokenService
	Images  services.ImageStore
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	if _, ok := obj["Errors"]; !ok {
		obj["Errors"] = map[string]string{}
	}
	obj["Flashes"] = middleware.Flashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the error page matching code (403, 404 or 500).
func RenderError(c *gin.Context, code int, message string) {
	name := "errors/500.html"
	switch code {
	case http.StatusForbidden:
		name = "errors/403.html"
	case http.StatusNotFound:
		name = "errors/404.html"
	}
	Render(c, code, name, gin.H{"Title": http.StatusText(code), "Error": message})
	c.Abort()
}

// HandleError maps a service error to an error page.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "")
	case errors.Is(err, services.ErrForbidden):
		RenderError(c, http.StatusForbidden, "")
	default:
		c.Error(err)
		logger.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "")
	}
}

func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "")
}

// Recovery renders the 500 page for panics.
func Recovery(c *gin.Context, recovered any) {
	logger.L().Error("panic recovered", zap.Any("error", recovered), zap.String("path", c.Request.URL.Path))
	RenderError(c, http.StatusInternalServerError, "")
}

func flash(c *gin.Context, category, message string) {
	middleware.AddFlash(c, category, message)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// safeNext accepts only local paths so ?next= cannot send users off-site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}

// pageURL is the prefix the pager appends "page=N" to.
func pageURL(path string, params url.Values) string {
	if encoded := params.Encode(); encoded != "" {
		return path + "?" + encoded + "&"
	}
	return path + "?"
}
