package httpds

import (
	"net/url"
	"path"
	"regexp"
	"strconv"

	"github.com/zeebo/xxh3"
)

var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HashString returns a stable hex digest of s.
func HashString(s string) string {
	return strconv.FormatUint(xxh3.HashString(s), 16)
}

// SafeFilenameFromURL derives a filesystem-safe base name from rawURL: the
// last path segment without extension, else the raw query, with runs of
// non-alphanumerics collapsed to "_". Unparseable URLs, or ones with neither
// part, fall back to HashString.
func SafeFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HashString(rawURL)
	}

	base := path.Base(u.Path)
	base = base[:len(base)-len(path.Ext(base))]
	if base == "." || base == "/" {
		base = ""
	}
	candidate := base
	if candidate == "" {
		candidate = u.RawQuery
	}
	clean := filenameCleaner.ReplaceAllString(candidate, "_")
	if clean == "" || clean == "_" {
		return HashString(rawURL)
	}
	return clean
}
