package router

import (
	"net/http"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/web"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every page, form and JSON endpoint onto r.
// uploadDir is served under /uploads.
func RegisterRoutes(r *gin.Engine, env *handlers.Env, uploadDir string) {
	// Handlers
	mainHandler := handlers.NewMainHandler()
	authHandler := handlers.NewAuthHandler(env)
	accountHandler := handlers.NewAccountHandler(env)
	postHandler := handlers.NewPostHandler(env)
	reviewHandler := handlers.NewReviewHandler()
	seoHandler := handlers.NewSEOHandler(env)

	r.StaticFS("/static", http.FS(web.Static()))
	r.Static("/uploads", uploadDir)
	r.NoRoute(handlers.NotFound)

	// Public Routes
	r.GET("/", mainHandler.Home)
	r.GET("/home", mainHandler.Home)
	r.GET("/about", mainHandler.About)
	r.GET("/search", mainHandler.Search)
	r.GET("/post/:id", postHandler.Detail)
	r.GET("/user/:username", accountHandler.UserPosts)

	r.GET("/feed.xml", seoHandler.Feed)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/robots.txt", seoHandler.RobotsTxt)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/reset_password", authHandler.ShowResetRequest)
	r.POST("/reset_password", authHandler.ResetRequest)
	r.GET("/reset_password/:token", authHandler.ShowResetToken)
	r.POST("/reset_password/:token", authHandler.ResetToken)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/account", accountHandler.ShowAccount)
		authorized.POST("/account", accountHandler.UpdateAccount)

		authorized.GET("/post/new", postHandler.ShowCreate)
		authorized.POST("/post/new", postHandler.Create)
		authorized.GET("/post/:id/update", postHandler.ShowUpdate)
		authorized.POST("/post/:id/update", postHandler.Update)
		authorized.POST("/post/:id/delete", postHandler.Delete)

		authorized.GET("/post/:id/review", reviewHandler.ShowCreate)
		authorized.POST("/post/:id/review", reviewHandler.Create)
		authorized.GET("/review/:id/edit", reviewHandler.ShowEdit)
		authorized.POST("/review/:id/edit", reviewHandler.Update)
		authorized.POST("/review/:id/delete", reviewHandler.Delete)
		authorized.POST("/review/:id/like", reviewHandler.Like)
		authorized.POST("/review/:id/dislike", reviewHandler.Dislike)
	}
}
