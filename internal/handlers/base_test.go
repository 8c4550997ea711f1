package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", ""},
		{"/account", "/account"},
		{"/post/3?x=1", "/post/3?x=1"},
		{"//evil.example", ""},
		{"/\\evil.example", ""},
		{"https://evil.example/", ""},
		{"account", ""},
	}
	for _, tt := range tests {
		if got := safeNext(tt.next); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestPageURL(t *testing.T) {
	if got := pageURL("/", url.Values{}); got != "/?" {
		t.Errorf("Expected /?, got %s", got)
	}
	if got := pageURL("/search", url.Values{"q": {"go lang"}}); got != "/search?q=go+lang&" {
		t.Errorf("Unexpected page URL %s", got)
	}
}

func TestFormErrorsUsesFormNames(t *testing.T) {
	err := binding.Validator.ValidateStruct(RegisterForm{
		Username:        "a",
		Email:           "not-an-email",
		Password:        "secret",
		ConfirmPassword: "other",
	})
	errs := formErrors(err)

	want := map[string]string{
		"username":         "Field must be at least 2 characters long.",
		"email":            "Invalid email address.",
		"confirm_password": "Field must be equal to password.",
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("%s: expected %q, got %q", field, msg, errs[field])
		}
	}
	if _, ok := errs["password"]; ok {
		t.Error("password should be valid")
	}
}

func TestReviewFormErrors(t *testing.T) {
	err := binding.Validator.ValidateStruct(ReviewForm{Rating: 6, Comment: "too short"})
	errs := reviewFormErrors(err)
	if errs["rating"] != "Number must be at most 5." {
		t.Errorf("Unexpected rating error %q", errs["rating"])
	}
	if errs["comment"] != "Field must be between 10 and 500 characters long." {
		t.Errorf("Unexpected comment error %q", errs["comment"])
	}

	errs = reviewFormErrors(errors.New("strconv.ParseInt: parsing \"x\": invalid syntax"))
	if errs["rating"] != "Not a valid choice." {
		t.Errorf("Expected non-numeric rating to be rejected, got %v", errs)
	}
	if _, ok := errs["form"]; ok {
		t.Error("generic form error should be folded into rating")
	}

	if err := binding.Validator.ValidateStruct(ReviewForm{Rating: 3}); err != nil {
		t.Errorf("Comment should be optional: %v", err)
	}
}

func formContext(values url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c
}

func TestBindFormValidatesTrimmedValues(t *testing.T) {
	var reg RegisterForm
	err := bindForm(formContext(url.Values{
		"username":         {" a "},
		"email":            {" a@example.com "},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	}), &reg)
	errs := formErrors(err)
	if errs["username"] != "Field must be at least 2 characters long." {
		t.Errorf("Expected padded one-letter username to be rejected, got %v", errs)
	}
	if _, ok := errs["email"]; ok {
		t.Errorf("Expected trimmed email to be valid, got %q", errs["email"])
	}
	if reg.Email != "a@example.com" {
		t.Errorf("Expected trimmed email, got %q", reg.Email)
	}

	var review ReviewForm
	err = bindForm(formContext(url.Values{"rating": {"4"}, "comment": {"a         "}}), &review)
	if errs := reviewFormErrors(err); errs["comment"] == "" {
		t.Errorf("Expected padded short comment to be rejected, got %v", errs)
	}

	review = ReviewForm{}
	if err := bindForm(formContext(url.Values{"rating": {"4"}, "comment": {"  Clear and useful.  "}}), &review); err != nil {
		t.Fatalf("Expected valid review, got %v", err)
	}
	if review.Comment != "Clear and useful." {
		t.Errorf("Expected trimmed comment, got %q", review.Comment)
	}

	var bad ReviewForm
	err = bindForm(formContext(url.Values{"rating": {"x"}}), &bad)
	if errs := reviewFormErrors(err); errs["rating"] != "Not a valid choice." {
		t.Errorf("Expected non-numeric rating error, got %v", errs)
	}
}
