package router

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
)

type testApp struct {
	t         *testing.T
	router    *gin.Engine
	env       *handlers.Env
	uploadDir string
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.DB = conn

	uploadDir := t.TempDir()
	images, err := services.NewLocalImageStore(uploadDir)
	if err != nil {
		t.Fatal(err)
	}
	env := &handlers.Env{
		SiteURL: "http://blog.test",
		Mail:    &services.MailService{},
		Tokens:  services.NewTokenService("test-secret"),
		Images:  images,
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(handlers.Recovery))
	store := cookie.NewStore([]byte("test-secret"))
	store.Options(middleware.SessionOptions(false))
	r.Use(sessions.Sessions("inkwell_session", store))
	r.Use(middleware.LoadUser())
	r.HTMLRender, err = web.Renderer()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	RegisterRoutes(r, env, uploadDir)

	return &testApp{t: t, router: r, env: env, uploadDir: uploadDir}
}

func (a *testApp) createUser(name string) *models.User {
	a.t.Helper()
	user, err := services.NewUserService(db.DB).CreateUser(name, name+"@example.com", "password")
	if err != nil {
		a.t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func (a *testApp) createPost(author *models.User, title, content string) *models.Post {
	a.t.Helper()
	post, err := services.NewPostService(db.DB).Create(author.ID, services.PostInput{Title: title, Content: content})
	if err != nil {
		a.t.Fatalf("create post: %v", err)
	}
	return post
}

// client keeps cookies between requests like a browser would.
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a, cookies: map[string]*http.Cookie{}}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

func (c *client) postJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Accept", "application/json")
	return c.send(req)
}

func (c *client) login(email, password string) {
	w := c.post("/login", url.Values{"email": {email}, "password": {password}})
	if w.Code != http.StatusFound {
		c.app.t.Fatalf("login as %s failed with %d", email, w.Code)
	}
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Expected redirect to %s, got %s", location, got)
	}
}

func expectBody(t *testing.T, w *httptest.ResponseRecorder, code int, contains ...string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("Expected %d, got %d", code, w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	for _, s := range contains {
		if !strings.Contains(string(body), s) {
			t.Errorf("Expected body to contain %q", s)
		}
	}
}
