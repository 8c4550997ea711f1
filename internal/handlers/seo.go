package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	FeedSize        = 20
	sitemapMaxPosts = 500
)

type SEOHandler struct {
	siteURL string
	posts   *services.PostService
}

func NewSEOHandler(env *Env) *SEOHandler {
	return &SEOHandler{
		siteURL: strings.TrimRight(env.SiteURL, "/"),
		posts:   services.NewPostService(db.DB),
	}
}

// RobotsTxt keeps crawlers off the account and form pages.
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /account
Disallow: /login
Disallow: /register
Disallow: /reset_password
Disallow: /post/new
Disallow: /review/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// SitemapXML lists the static pages and the most recent posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	now := time.Now().Format("2006-01-02")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.siteURL + "/", LastMod: now, ChangeFreq: "daily", Priority: 1.0},
			{Loc: h.siteURL + "/about", ChangeFreq: "monthly", Priority: 0.5},
		},
	}

	posts, err := h.posts.Latest(sitemapMaxPosts)
	if err != nil {
		c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, post := range posts {
		// newer posts change more often as reviews come in
		priority, freq := 0.6, "weekly"
		if time.Since(post.DatePosted) < 7*24*time.Hour {
			priority, freq = 0.8, "daily"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/post/%d", h.siteURL, post.ID),
			LastMod:    post.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	h.writeXML(c, "application/xml; charset=utf-8", set)
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// Feed serves an RSS 2.0 feed of the latest posts.
func (h *SEOHandler) Feed(c *gin.Context) {
	posts, err := h.posts.Latest(FeedSize)
	if err != nil {
		c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	channel := rssChannel{
		Title:       "Inkwell",
		Link:        h.siteURL + "/",
		Description: "Latest posts on Inkwell",
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].DatePosted.Format(time.RFC1123Z)
	}
	for _, post := range posts {
		link := fmt.Sprintf("%s/post/%d", h.siteURL, post.ID)
		channel.Items = append(channel.Items, rssItem{
			Title:       post.Title,
			Link:        link,
			GUID:        link,
			Author:      post.User.Username,
			PubDate:     post.DatePosted.Format(time.RFC1123Z),
			Description: string(utils.RenderMarkdownCached(fmt.Sprintf("post:%d", post.ID), post.UpdatedAt, post.Content)),
		})
	}

	h.writeXML(c, "application/rss+xml; charset=utf-8", rss{Version: "2.0", Channel: channel})
}

func (h *SEOHandler) writeXML(c *gin.Context, contentType string, v interface{}) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
