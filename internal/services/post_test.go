package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestListSearchAndPagination(t *testing.T) {
	conn := openTestDB(t)
	author := createUser(t, conn, "author")
	other := createUser(t, conn, "other")
	s := NewPostService(conn)

	for i := 1; i <= 7; i++ {
		createPost(t, conn, author, fmt.Sprintf("Go tip %d", i))
	}
	createPost(t, conn, other, "Gardening")

	posts, p, err := s.List(ListQuery{Page: 1, PerPage: 5})
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 8 || p.Pages != 2 || len(posts) != 5 {
		t.Errorf("Unexpected page %+v with %d posts", p, len(posts))
	}
	if posts[0].Title != "Gardening" {
		t.Errorf("Expected newest first, got %s", posts[0].Title)
	}
	if posts[0].User.Username != "other" {
		t.Error("Expected author to be preloaded")
	}

	posts, p, _ = s.List(ListQuery{Search: "GO TIP", Page: 2, PerPage: 5})
	if p.Total != 7 || len(posts) != 2 {
		t.Errorf("Expected 7 matches with 2 on page 2, got %d / %d", p.Total, len(posts))
	}

	posts, _, _ = s.List(ListQuery{Search: "body of garden", Page: 1, PerPage: 10})
	if len(posts) != 1 {
		t.Errorf("Expected content search to match one post, got %d", len(posts))
	}

	posts, p, _ = s.List(ListQuery{UserID: other.ID, Page: 1, PerPage: 5})
	if p.Total != 1 || posts[0].UserID != other.ID {
		t.Errorf("Expected only the user's posts, got %+v", p)
	}

	_, p, _ = s.List(ListQuery{Page: 9, PerPage: 5})
	if !p.OutOfRange() {
		t.Error("Expected page 9 to be out of range")
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	conn := openTestDB(t)
	author := createUser(t, conn, "author")
	other := createUser(t, conn, "other")
	post := createPost(t, conn, author, "Draft")
	s := NewPostService(conn)

	if _, _, err := s.Update(post.ID, other.ID, PostInput{Title: "Hijacked", Content: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	image := "cover.png"
	updated, previous, err := s.Update(post.ID, author.ID, PostInput{Title: "Final", Content: "Done", ImageFile: &image})
	if err != nil {
		t.Fatal(err)
	}
	if previous != "" {
		t.Errorf("Expected no previous image, got %q", previous)
	}
	if updated.Title != "Final" || updated.ImageFile == nil || *updated.ImageFile != image {
		t.Errorf("Unexpected update result %+v", updated)
	}

	if _, err := s.Get(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
