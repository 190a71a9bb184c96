package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kbukum/scribekit/errors"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Hosts serving the watch?v= form.
var queryHosts = map[string]bool{
	"youtube.com":        true,
	"www.youtube.com":    true,
	"m.youtube.com":      true,
	"music.youtube.com":  true,
	"gaming.youtube.com": true,
}

// Hosts serving the /{kind}/{id} form.
var pathHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"www.youtube-nocookie.com": true,
	"youtube-nocookie.com":     true,
}

var pathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/"}

// VideoID extracts the 11 character video ID from a watch, short, embed or
// youtu.be URL. Only http and https URLs are accepted.
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalidURL()
	}
	host := strings.ToLower(u.Hostname())

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(strings.TrimPrefix(u.Path, "/"))
	case queryHosts[host] && u.Path == "/watch":
		id = u.Query().Get("v")
	case pathHosts[host]:
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !idPattern.MatchString(id) {
		return "", invalidURL()
	}
	return id, nil
}

// ValidateURL reports whether raw is a recognized video URL.
func ValidateURL(raw string) error {
	_, err := VideoID(raw)
	return err
}

// CanonicalURL returns the watch URL for a video ID. Playlist and tracking
// parameters of the original URL are dropped.
func CanonicalURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

func invalidURL() *errors.AppError {
	return errors.InvalidInput("url", "not a recognized YouTube video URL")
}
