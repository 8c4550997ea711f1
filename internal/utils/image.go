package utils

import (
	"strings"
)

const (
	UploadsURLPrefix = "/uploads/"
	defaultImageURL  = "/static/img/default.jpg"
)

// ImageURL maps a stored image reference to a URL the browser can load.
// Remote references (Cloudinary) are returned unchanged.
func ImageURL(name string) string {
	switch {
	case name == "":
		return ""
	case name == "default.jpg":
		return defaultImageURL
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		return name
	default:
		return UploadsURLPrefix + strings.TrimPrefix(name, "/")
	}
}
