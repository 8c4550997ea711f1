package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"
)

type reactionResponse struct {
	Success  bool `json:"success"`
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
	Already  bool `json:"already"`
}

func decodeReaction(t *testing.T, body []byte) reactionResponse {
	t.Helper()
	var res reactionResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("invalid JSON %s: %v", body, err)
	}
	return res
}

func TestReviewLifecycle(t *testing.T) {
	app := setupApp(t)
	author := app.createUser("author")
	app.createUser("reader")
	app.createUser("other")
	post := app.createPost(author, "Reviewed", "Some *markdown* content")
	postPath := fmt.Sprintf("/post/%d", post.ID)

	reader := app.client()
	reader.login("reader@example.com", "password")

	expectBody(t, reader.get(postPath+"/review"), http.StatusOK, "Add Review")

	w := reader.post(postPath+"/review", url.Values{"rating": {"4"}, "comment": {"short"}})
	expectBody(t, w, http.StatusBadRequest, "Field must be between 10 and 500 characters long.")

	w = reader.post(postPath+"/review", url.Values{"rating": {"4"}, "comment": {"a         "}})
	expectBody(t, w, http.StatusBadRequest, "Field must be between 10 and 500 characters long.")

	w = reader.post(postPath+"/review", url.Values{"rating": {"9"}})
	expectBody(t, w, http.StatusBadRequest, "Number must be at most 5.")

	w = reader.post(postPath+"/review", url.Values{"rating": {"4"}, "comment": {"Well argued and easy to follow."}})
	expectRedirect(t, w, postPath)
	expectBody(t, reader.get(postPath), http.StatusOK,
		"Your review has been added successfully!",
		"4.0 out of 5",
		"(1 review)",
		"Well argued and easy to follow.",
		"<em>markdown</em>",
		"Edit your review",
	)

	expectRedirect(t, reader.get(postPath+"/review"), postPath)
	expectBody(t, reader.get(postPath), http.StatusOK, "You have already reviewed this post. You can edit your existing review.")

	var review models.Review
	if err := db.DB.Where("post_id = ?", post.ID).First(&review).Error; err != nil {
		t.Fatal(err)
	}
	reviewPath := fmt.Sprintf("/review/%d", review.ID)

	other := app.client()
	other.login("other@example.com", "password")
	expectRedirect(t, other.get(reviewPath+"/edit"), postPath)
	expectBody(t, other.get(postPath), http.StatusOK, "You can only edit your own reviews.")
	expectRedirect(t, other.post(reviewPath+"/delete", url.Values{}), postPath)
	expectBody(t, other.get(postPath), http.StatusOK, "You can only delete your own reviews.")

	w = reader.post(reviewPath+"/edit", url.Values{"rating": {"2"}, "comment": {""}})
	expectRedirect(t, w, postPath)
	expectBody(t, reader.get(postPath), http.StatusOK, "Your review has been updated!", "2.0 out of 5")

	owner := app.client()
	owner.login("author@example.com", "password")
	expectRedirect(t, owner.post(reviewPath+"/delete", url.Values{}), postPath)
	expectBody(t, owner.get(postPath), http.StatusOK, "Review has been deleted.", "0.0 out of 5", "(0 reviews)")
}

func TestLikeDislike(t *testing.T) {
	app := setupApp(t)
	author := app.createUser("author")
	app.createUser("fan")
	post := app.createPost(author, "Likeable", "content")
	review := models.Review{Rating: 5, UserID: author.ID, PostID: post.ID}
	if err := db.DB.Create(&review).Error; err != nil {
		t.Fatal(err)
	}
	reviewPath := fmt.Sprintf("/review/%d", review.ID)

	anon := app.client()
	if w := anon.postJSON(reviewPath + "/like"); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for anonymous JSON request, got %d", w.Code)
	}

	fan := app.client()
	fan.login("fan@example.com", "password")

	w := fan.postJSON(reviewPath + "/like")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	res := decodeReaction(t, w.Body.Bytes())
	if !res.Success || res.Likes != 1 || res.Dislikes != 0 || res.Already {
		t.Errorf("Unexpected first like %+v", res)
	}

	res = decodeReaction(t, fan.postJSON(reviewPath+"/dislike").Body.Bytes())
	if res.Likes != 1 || res.Dislikes != 0 || !res.Already {
		t.Errorf("Expected second reaction to be ignored, got %+v", res)
	}

	authorClient := app.client()
	authorClient.login("author@example.com", "password")
	res = decodeReaction(t, authorClient.postJSON(reviewPath+"/dislike").Body.Bytes())
	if res.Likes != 1 || res.Dislikes != 1 {
		t.Errorf("Unexpected counters %+v", res)
	}

	w = fan.postJSON("/review/9999/like")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if res := decodeReaction(t, w.Body.Bytes()); res.Success {
		t.Error("Expected success=false for a missing review")
	}
}

func TestReviewMissingPost(t *testing.T) {
	app := setupApp(t)
	app.createUser("reader")
	c := app.client()
	c.login("reader@example.com", "password")

	expectBody(t, c.get("/post/4242/review"), http.StatusNotFound, "Page Not Found")
}
