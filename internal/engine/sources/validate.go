package sources

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
)

const (
	maxKeywordRunes = 200
	maxLimit        = 100
	defaultLimit    = 1
)

var playlistIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{6,50}$`)

// ValidateKeyword trims kw and checks it is 1-200 characters.
func ValidateKeyword(kw string) (string, error) {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return "", &engine.InputError{Field: "keyword", Message: "is required"}
	}
	if utf8.RuneCountInString(kw) > maxKeywordRunes {
		return "", &engine.InputError{Field: "keyword", Message: "must be at most 200 characters"}
	}
	return kw, nil
}

// ValidateLimit applies the default for 0 and rejects anything outside 1-100.
func ValidateLimit(n int) (int, error) {
	if n == 0 {
		return defaultLimit, nil
	}
	if n < 1 || n > maxLimit {
		return 0, &engine.InputError{Field: "limit", Message: "must be between 1 and 100"}
	}
	return n, nil
}

// ValidateSort defaults to relevance and accepts relevance or date in any case.
func ValidateSort(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return engine.SortRelevance, nil
	case engine.SortRelevance, engine.SortDate:
		return s, nil
	}
	return "", &engine.InputError{Field: "sort_by", Message: "must be relevance or date"}
}

// ParsePlaylistURL returns the list ID of a YouTube playlist or watch URL.
func ParsePlaylistURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &engine.InputError{Field: "playlist_url", Message: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return "", &engine.InputError{Field: "playlist_url", Message: "must be an http(s) URL"}
	}
	if !isYouTubeHost(u.Hostname()) {
		return "", &engine.InputError{Field: "playlist_url", Message: "must be a youtube.com URL"}
	}
	id := u.Query().Get("list")
	if id == "" {
		return "", &engine.InputError{Field: "playlist_url", Message: "missing list parameter"}
	}
	if !playlistIDRE.MatchString(id) {
		return "", &engine.InputError{Field: "playlist_url", Message: "invalid playlist id"}
	}
	return id, nil
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}
