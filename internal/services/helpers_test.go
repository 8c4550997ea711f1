package services

import (
	"fmt"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func createUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user, err := NewUserService(conn).CreateUser(name, name+"@example.com", "password")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func createPost(t *testing.T, conn *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	post, err := NewPostService(conn).Create(author.ID, PostInput{Title: title, Content: "Body of " + title})
	if err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}
