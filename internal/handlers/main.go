package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	PostsPerHomePage   = 5
	PostsPerSearchPage = 10
)

type MainHandler struct {
	posts   *services.PostService
	reviews *services.ReviewService
}

func NewMainHandler() *MainHandler {
	return &MainHandler{
		posts:   services.NewPostService(db.DB),
		reviews: services.NewReviewService(db.DB),
	}
}

// Home lists posts newest first, optionally filtered by ?search=.
func (h *MainHandler) Home(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	posts, p, ok := h.page(c, search, PostsPerHomePage)
	if !ok {
		return
	}

	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	Render(c, http.StatusOK, "home.html", gin.H{
		"Posts":      posts,
		"Pagination": p,
		"Search":     search,
		"PageURL":    pageURL("/", params),
	})
}

func (h *MainHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// Search lists posts whose title or content contains ?q=. An empty query lists everything.
func (h *MainHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	posts, p, ok := h.page(c, query, PostsPerSearchPage)
	if !ok {
		return
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	Render(c, http.StatusOK, "search.html", gin.H{
		"Title":      "Search",
		"Posts":      posts,
		"Pagination": p,
		"Query":      query,
		"PageURL":    pageURL("/search", params),
	})
}

func (h *MainHandler) page(c *gin.Context, search string, perPage int) ([]models.Post, *utils.Pagination, bool) {
	posts, p, err := h.posts.List(services.ListQuery{
		Search:  search,
		Page:    utils.ParsePage(c.Query("page")),
		PerPage: perPage,
	})
	if err != nil {
		HandleError(c, err)
		return nil, nil, false
	}
	if p.OutOfRange() {
		NotFound(c)
		return nil, nil, false
	}
	if err := h.reviews.AttachRatings(posts); err != nil {
		HandleError(c, err)
		return nil, nil, false
	}
	return posts, p, true
}
