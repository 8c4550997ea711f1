// Package web holds the embedded templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates static
var FS embed.FS

// Static is the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Views lists every page template by the name handlers render it with.
var Views = []string{
	"home.html",
	"about.html",
	"search.html",
	"user_posts.html",
	"auth/register.html",
	"auth/login.html",
	"auth/account.html",
	"auth/reset_request.html",
	"auth/reset_token.html",
	"posts/post.html",
	"posts/create_post.html",
	"reviews/create_review.html",
	"errors/403.html",
	"errors/404.html",
	"errors/500.html",
}

// Renderer parses each view together with the base layout and includes.
func Renderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	for _, view := range Views {
		tmpl, err := template.New("base.html").Funcs(FuncMap()).ParseFS(FS,
			"templates/layouts/base.html",
			"templates/includes/*.html",
			path.Join("templates/views", view),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"stars":      stars,
		"formatDate": formatDate,
		"imageURL":   utils.ImageURL,
		"imagePtr": func(s *string) string {
			if s == nil {
				return ""
			}
			return utils.ImageURL(*s)
		},
		"excerpt": excerpt,
		"rating": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
	}
}

// stars renders a rating as five "full", "half" or "empty" markers.
func stars(v interface{}) []string {
	var value float64
	switch n := v.(type) {
	case int:
		value = float64(n)
	case int64:
		value = float64(n)
	case float64:
		value = n
	}

	out := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		switch {
		case value >= float64(i):
			out = append(out, "full")
		case value >= float64(i)-0.5:
			out = append(out, "half")
		default:
			out = append(out, "empty")
		}
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// excerpt shortens plain text to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
