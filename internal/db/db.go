package db

import (
	"fmt"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Review{},
		&models.ReviewReaction{},
	}
}

// Dialector returns the gorm dialector for the configured database.
func Dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DatabaseDriver() {
	case config.DriverPostgres:
		return postgres.Open(cfg.DatabaseURL)
	case config.DriverMySQL:
		return mysql.Open(cfg.MySQLDSN())
	default:
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	}
}

// SQLiteDSN adds the pragmas every SQLite connection needs: writers wait
// for the lock instead of failing, and foreign keys are enforced.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Open connects with the given dialector and routes gorm's logs through zap.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time
	maxConns := 25
	if dialector.Name() == "sqlite" {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	return conn, nil
}

// Migrate creates or updates every table.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}

// Init connects to the configured database, migrates it and assigns DB.
func Init(cfg *config.Config) error {
	conn, err := Open(Dialector(cfg))
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.DatabaseDriver(), err)
	}
	logger.S().Infow("Database connection established", "driver", cfg.DatabaseDriver())

	if err := Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.S().Info("Database migration completed")

	DB = conn
	return nil
}

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@flaskblog.com"
	AdminPassword = "admin123"
)

// SeedAdmin creates the default admin account when there are no users yet.
// It reports whether an account was created.
func SeedAdmin(conn *gorm.DB) (bool, error) {
	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		logger.S().Debug("Users already present, skipping admin seed")
		return false, nil
	}

	hash, err := utils.HashPassword(AdminPassword)
	if err != nil {
		return false, err
	}
	admin := models.User{
		Username:  AdminUsername,
		Email:     AdminEmail,
		Password:  hash,
		ImageFile: models.DefaultImageFile,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

// CreateMySQLDatabase creates the configured MySQL schema if it is missing.
func CreateMySQLDatabase(cfg *config.Config) error {
	conn, err := Open(mysql.Open(cfg.MySQLServerDSN()))
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return conn.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.MySQL.Database)).Error
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// zapWriter adapts gorm's printf-style logger to zap.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.S().Warnf(format, args...)
}
