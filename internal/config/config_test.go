package config

import "testing"

func TestDatabaseDriver(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DatabaseDriver(); got != DriverSQLite {
		t.Errorf("Expected %s, got %s", DriverSQLite, got)
	}

	cfg.MySQL = MySQLConfig{Host: "db", User: "blog", Password: "p@ss:word", Database: "flaskblog", Port: 3306}
	if got := cfg.DatabaseDriver(); got != DriverMySQL {
		t.Errorf("Expected %s, got %s", DriverMySQL, got)
	}

	cfg.DatabaseURL = "postgres://localhost/blog"
	if got := cfg.DatabaseDriver(); got != DriverPostgres {
		t.Errorf("Expected %s, got %s", DriverPostgres, got)
	}
}

func TestMySQLRequiresAllSettings(t *testing.T) {
	cfg := &Config{MySQL: MySQLConfig{Host: "db", User: "blog", Database: "flaskblog"}}
	if cfg.MySQLConfigured() {
		t.Error("MySQL should not be configured without a password")
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{MySQL: MySQLConfig{Host: "db", User: "blog", Password: "p@ss", Database: "flaskblog", Port: 3307}}
	want := "blog:p@ss@tcp(db:3307)/flaskblog?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("MYSQL_PORT", "not-a-number")

	cfg, _ := Load()
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.SQLitePath != "site.db" {
		t.Errorf("Expected site.db, got %s", cfg.SQLitePath)
	}
	if cfg.MySQL.Port != 3306 {
		t.Errorf("Expected fallback MySQL port 3306, got %d", cfg.MySQL.Port)
	}
}
