package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, envFound := config.Load()

	log := logger.Init(cfg.LogLevel)
	defer log.Sync()
	if !envFound {
		log.Info("No .env file found, using environment variables")
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	if err := db.Init(cfg); err != nil {
		log.Fatal("Database initialization failed", zap.Error(err))
	}

	images, err := newImageStore(cfg)
	if err != nil {
		log.Fatal("Image store initialization failed", zap.Error(err))
	}

	env := &handlers.Env{
		SiteURL: cfg.SiteURL,
		Mail:    services.NewMailService(cfg.SMTP),
		Tokens:  services.NewTokenService(cfg.SecretKey),
		Images:  images,
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(handlers.Recovery))
	r.Use(middleware.RequestLogger())

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SecretKey))
	store.Options(middleware.SessionOptions(false))
	r.Use(sessions.Sessions("inkwell_session", store))
	r.Use(middleware.LoadUser())

	r.HTMLRender, err = web.Renderer()
	if err != nil {
		log.Fatal("Template parsing failed", zap.Error(err))
	}

	router.RegisterRoutes(r, env, cfg.UploadDir)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Inkwell server starting", zap.String("addr", srv.Addr), zap.String("database", cfg.DatabaseDriver()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	env.Mail.Wait()
	log.Info("Server exited")
}

// newImageStore uses Cloudinary when CLOUDINARY_URL is set, else local disk.
func newImageStore(cfg *config.Config) (services.ImageStore, error) {
	if cfg.CloudinaryURL != "" {
		logger.S().Info("Storing images on Cloudinary")
		return services.NewCloudinaryImageStore(cfg.CloudinaryURL)
	}
	logger.S().Infow("Storing images on disk", "dir", cfg.UploadDir)
	return services.NewLocalImageStore(cfg.UploadDir)
}
