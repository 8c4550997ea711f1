package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
)

// AuthRequired sends anonymous visitors to the login page, remembering where
// they were going. JSON clients get a 401 instead.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); exists {
			c.Next()
			return
		}

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Please log in to access this page.",
			})
			return
		}

		AddFlash(c, FlashInfo, "Please log in to access this page.")
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserID)

		if remember, _ := session.Get(SessionRemember).(bool); remember {
			session.Options(SessionOptions(true))
		}

		if userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			} else {
				// account is gone, drop the stale session
				session.Delete(SessionUserID)
				session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

const SessionRemember = "remember"

// RememberFor is how long a "remember me" login lasts.
const RememberFor = 30 * 24 * time.Hour

// SessionOptions returns cookie options for a remembered or browser-session login.
func SessionOptions(remember bool) sessions.Options {
	opts := sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		opts.MaxAge = int(RememberFor.Seconds())
	}
	return opts
}
