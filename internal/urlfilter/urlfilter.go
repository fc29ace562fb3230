// Package urlfilter rejects search-engine-domain and placeholder URLs
// before a hit is allowed to reach the scorer, grounded on
// app/utils/url_validator.py from the source pipeline.
package urlfilter

import (
	"net/url"
	"regexp"
	"strings"
)

// searchEngineDomains are URLs that are themselves a search results
// page rather than a content resource - never useful as evidence.
var searchEngineDomains = map[string]bool{
	"google.com":         true,
	"www.google.com":     true,
	"bing.com":           true,
	"www.bing.com":       true,
	"search.yahoo.com":   true,
	"duckduckgo.com":     true,
	"baidu.com":          true,
	"yandex.com":         true,
	"google.com.br":      true,
	"www.google.com.br":  true,
}

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)example\.(com|org|net)([/:?#]|$)`),
	regexp.MustCompile(`(?i)lorem[\-_]?ipsum`),
	regexp.MustCompile(`(?i)^https?://localhost`),
	regexp.MustCompile(`(?i)placeholder`),
	regexp.MustCompile(`(?i)your[\-_]?domain`),
}

// Domain returns the lowercased host of a URL, or "" if it cannot be
// parsed.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}

// IsSearchEngineURL reports whether the URL points at a search engine's
// results page rather than content.
func IsSearchEngineURL(rawURL string) bool {
	return searchEngineDomains[Domain(rawURL)]
}

// IsValid reports whether a URL is a well-formed absolute http(s) URL,
// is not a search-engine domain, and does not match a known placeholder
// pattern.
func IsValid(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return false
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if IsSearchEngineURL(trimmed) {
		return false
	}
	for _, p := range placeholderPatterns {
		if p.MatchString(trimmed) {
			return false
		}
	}
	return true
}
