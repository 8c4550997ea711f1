package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type MySQLConfig struct {
	Host     string
	User     string
	Password string
	Database string
	Port     int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether every SMTP setting needed to send mail is present.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != 0 && s.Username != "" && s.Password != "" && s.From != ""
}

type Config struct {
	Port          string
	SecretKey     string
	SiteURL       string
	GinMode       string
	LogLevel      string
	DatabaseURL   string
	SQLitePath    string
	MySQL         MySQLConfig
	SMTP          SMTPConfig
	CloudinaryURL string
	UploadDir     string
}

// Load reads .env (when present) and then the process environment.
// The boolean result reports whether a .env file was found.
func Load() (*Config, bool) {
	found := godotenv.Load() == nil

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		SecretKey:     getEnv("SECRET_KEY", "secret_key_change_me"),
		SiteURL:       getEnv("SITE_URL", "http://localhost:8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnv("SQLITE_PATH", "site.db"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		MySQL: MySQLConfig{
			Host:     os.Getenv("MYSQL_HOST"),
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Database: os.Getenv("MYSQL_DATABASE"),
			Port:     getEnvInt("MYSQL_PORT", 3306),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 0),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
	return cfg, found
}

// MySQLConfigured mirrors the old deployment rule: MySQL is only used when
// host, user, password and database are all set.
func (c *Config) MySQLConfigured() bool {
	m := c.MySQL
	return m.Host != "" && m.User != "" && m.Password != "" && m.Database != ""
}

// DatabaseDriver picks postgres when DATABASE_URL is set, then MySQL, then
// falls back to the local SQLite file.
func (c *Config) DatabaseDriver() string {
	switch {
	case c.DatabaseURL != "":
		return DriverPostgres
	case c.MySQLConfigured():
		return DriverMySQL
	default:
		return DriverSQLite
	}
}

// MySQLDSN builds a go-sql-driver DSN. The password is passed verbatim.
func (c *Config) MySQLDSN() string {
	m := c.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

// MySQLServerDSN is MySQLDSN without a database, used to create the schema.
func (c *Config) MySQLServerDSN() string {
	m := c.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
