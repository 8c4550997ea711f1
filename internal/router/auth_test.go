package router

import (
	"net/http"
	"net/url"
	"testing"
)

func TestRegisterLoginLogout(t *testing.T) {
	app := setupApp(t)
	c := app.client()

	expectBody(t, c.get("/register"), http.StatusOK, "Join Today")

	w := c.post("/register", url.Values{
		"username": {"alice"}, "email": {"alice@example.com"},
		"password": {"secret1"}, "confirm_password": {"secret2"},
	})
	expectBody(t, w, http.StatusBadRequest, "Field must be equal to password.")

	w = c.post("/register", url.Values{
		"username": {"alice"}, "email": {"alice@example.com"},
		"password": {"secret1"}, "confirm_password": {"secret1"},
	})
	expectRedirect(t, w, "/login")
	expectBody(t, c.get("/login"), http.StatusOK, "Your account has been created! You are now able to log in")

	w = c.post("/register", url.Values{
		"username": {"alice"}, "email": {"other@example.com"},
		"password": {"secret1"}, "confirm_password": {"secret1"},
	})
	expectBody(t, w, http.StatusConflict, "That username is taken. Please choose a different one.")

	w = c.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	expectBody(t, w, http.StatusUnauthorized, "Login Unsuccessful. Please check email and password")

	c.login("alice@example.com", "secret1")
	expectBody(t, c.get("/account"), http.StatusOK, "alice@example.com", "Account Info")
	expectRedirect(t, c.get("/register"), "/")

	expectRedirect(t, c.get("/logout"), "/")
	expectRedirect(t, c.get("/account"), "/login?next=%2Faccount")
}

func TestLoginHonoursLocalNextOnly(t *testing.T) {
	app := setupApp(t)
	app.createUser("bob")

	c := app.client()
	w := c.post("/login?next=/post/new", url.Values{"email": {"bob@example.com"}, "password": {"password"}})
	expectRedirect(t, w, "/post/new")

	c = app.client()
	w = c.post("/login?next=https://evil.example/", url.Values{"email": {"bob@example.com"}, "password": {"password"}})
	expectRedirect(t, w, "/")
}

func TestRememberMeSetsPersistentCookie(t *testing.T) {
	app := setupApp(t)
	app.createUser("carol")

	c := app.client()
	w := c.post("/login", url.Values{"email": {"carol@example.com"}, "password": {"password"}, "remember": {"true"}})
	expectRedirect(t, w, "/")

	var found bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "inkwell_session" {
			found = true
			if ck.MaxAge <= 0 {
				t.Errorf("Expected a persistent cookie, got MaxAge %d", ck.MaxAge)
			}
		}
	}
	if !found {
		t.Fatal("session cookie not set")
	}
}

func TestPasswordReset(t *testing.T) {
	app := setupApp(t)
	user := app.createUser("dave")
	c := app.client()

	w := c.post("/reset_password", url.Values{"email": {"nobody@example.com"}})
	expectBody(t, w, http.StatusBadRequest, "There is no account with that email. You must register first.")

	expectRedirect(t, c.post("/reset_password", url.Values{"email": {"dave@example.com"}}), "/login")
	expectBody(t, c.get("/login"), http.StatusOK, "An email has been sent with instructions to reset your password.")

	expectRedirect(t, c.get("/reset_password/not-a-token"), "/reset_password")
	expectBody(t, c.get("/reset_password"), http.StatusOK, "That is an invalid or expired token")

	token, err := app.env.Tokens.ResetToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	expectBody(t, c.get("/reset_password/"+token), http.StatusOK, "Reset Password")

	w = c.post("/reset_password/"+token, url.Values{"password": {"brandnew"}, "confirm_password": {"brandnew"}})
	expectRedirect(t, w, "/login")

	c.login("dave@example.com", "brandnew")
}
