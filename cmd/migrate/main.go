// Command migrate prepares the configured database or copies an existing
// SQLite database into MySQL or PostgreSQL.
//
//	migrate init
//	migrate copy [-from site.db]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate init | migrate copy [-from site.db]")
}

func main() {
	cfg, _ := config.Load()
	logger.Init(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(cfg)
	case "copy":
		fs := flag.NewFlagSet("copy", flag.ExitOnError)
		from := fs.String("from", cfg.SQLitePath, "SQLite database to copy from")
		fs.Parse(os.Args[2:])
		err = runCopy(cfg, *from)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.L().Error("Migration failed", zap.Error(err))
		fmt.Println("Migration failed:", err)
		os.Exit(1)
	}
}

// runInit creates the schema on the configured database and seeds the admin account.
func runInit(cfg *config.Config) error {
	conn, err := openTarget(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	created, err := db.SeedAdmin(conn)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Printf("Admin user created: %s / %s\n", db.AdminEmail, db.AdminPassword)
	}
	fmt.Printf("Database initialized (%s)\n", cfg.DatabaseDriver())
	return nil
}

// runCopy moves every row from the SQLite file at from into the configured
// MySQL or PostgreSQL database, replacing what is there.
func runCopy(cfg *config.Config, from string) error {
	if _, err := os.Stat(from); errors.Is(err, os.ErrNotExist) {
		fmt.Println("No SQLite database found. Creating fresh database.")
		return runInit(cfg)
	}
	if cfg.DatabaseDriver() == config.DriverSQLite {
		fmt.Println("MySQL configuration not found. Keeping SQLite database.")
		return nil
	}

	src, err := db.Open(sqlite.Open(db.SQLiteDSN(from)))
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	data, err := readSource(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", from, err)
	}
	if data.DuplicateReviews > 0 {
		fmt.Printf("Skipped %d duplicate reviews (kept the newest per user and post)\n", data.DuplicateReviews)
	}

	dst, err := openTarget(cfg)
	if err != nil {
		return err
	}
	if err := recreateTables(dst); err != nil {
		return err
	}
	if err := copyRows(dst, data); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}

	fmt.Printf("Migrated %d users, %d posts, %d reviews and %d reactions to %s\n",
		len(data.Users), len(data.Posts), len(data.Reviews), len(data.Reactions), cfg.DatabaseDriver())
	return nil
}

func openTarget(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseDriver() == config.DriverMySQL {
		if err := db.CreateMySQLDatabase(cfg); err != nil {
			return nil, fmt.Errorf("create MySQL database: %w", err)
		}
	}
	conn, err := db.Open(db.Dialector(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DatabaseDriver(), err)
	}
	return conn, nil
}

func recreateTables(conn *gorm.DB) error {
	tables := db.Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := conn.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
